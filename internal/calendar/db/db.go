package db

import (
	"context"
	"family-calendar/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- USERS ----------------

// GetUsers → all family members, stable id order
func (d *DB) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserByID → fetch one member by id
func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ---------------- EVENTS ----------------

// ListEvents → enriched events, optionally restricted to [startDate, endDate).
// Both bounds empty means "everything". Ordering is date then start_time;
// NULL start times sort first, so all-day entries lead each day.
func (d *DB) ListEvents(ctx context.Context, startDate, endDate string) ([]models.EventWithUser, error) {
	var events []models.EventWithUser
	q := d.Bun.NewSelect().
		TableExpr("events AS e").
		ColumnExpr("e.id, e.title, e.date, e.start_time, e.end_time, e.user_id, e.created_at").
		ColumnExpr("u.name AS user_name, u.color AS user_color").
		Join("JOIN users AS u ON u.id = e.user_id")
	if startDate != "" {
		q = q.Where("e.date >= ? AND e.date < ?", startDate, endDate)
	}
	err := q.OrderExpr("e.date ASC, e.start_time ASC").Scan(ctx, &events)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.EventWithUser{}
	}
	return events, nil
}

// GetEventByID → one enriched event, sql.ErrNoRows when absent
func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.EventWithUser, error) {
	var event models.EventWithUser
	err := d.Bun.NewSelect().
		TableExpr("events AS e").
		ColumnExpr("e.id, e.title, e.date, e.start_time, e.end_time, e.user_id, e.created_at").
		ColumnExpr("u.name AS user_name, u.color AS user_color").
		Join("JOIN users AS u ON u.id = e.user_id").
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// EventExists → existence probe without the join
func (d *DB) EventExists(ctx context.Context, id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

// CreateEvent → insert new event; the assigned id is written back into event
func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

// UpdateEvent → full replace of the mutable columns; created_at stays
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("title", "date", "start_time", "end_time", "user_id").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

// DeleteEvent → hard delete by id
func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// CountEvents → total rows in the events table
func (d *DB) CountEvents(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.Event)(nil)).Count(ctx)
}

// SavedTitles → distinct titles used by one member, most recently used
// first (max created_at per title)
func (d *DB) SavedTitles(ctx context.Context, userID int64, limit int) ([]string, error) {
	var rows []struct {
		Title    string `bun:"title"`
		LastUsed string `bun:"last_used"`
	}
	err := d.Bun.NewSelect().
		TableExpr("events").
		ColumnExpr("title").
		ColumnExpr("MAX(created_at) AS last_used").
		Where("user_id = ?", userID).
		GroupExpr("title").
		OrderExpr("last_used DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, row.Title)
	}
	return titles, nil
}
