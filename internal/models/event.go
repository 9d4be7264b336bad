package models

import "github.com/uptrace/bun"

// Event is a single calendar entry. Date is stored as YYYY-MM-DD and the
// optional times as plain time-of-day strings, so range filtering and
// ordering work on string comparison alone. CreatedAt is set server-side
// on insert and never updated.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID        int64   `bun:"id,pk,autoincrement" json:"id"`
	Title     string  `bun:"title,notnull" json:"title"`
	Date      string  `bun:"date,notnull" json:"date"`
	StartTime *string `bun:"start_time" json:"start_time"`
	EndTime   *string `bun:"end_time" json:"end_time"`
	UserID    int64   `bun:"user_id,notnull" json:"user_id"`
	CreatedAt string  `bun:"created_at,notnull" json:"created_at"`
}

// EventWithUser is an event row joined with its owner's display fields.
// It is flat on purpose: the API serves event and owner columns as one
// JSON object.
type EventWithUser struct {
	ID        int64   `bun:"id" json:"id"`
	Title     string  `bun:"title" json:"title"`
	Date      string  `bun:"date" json:"date"`
	StartTime *string `bun:"start_time" json:"start_time"`
	EndTime   *string `bun:"end_time" json:"end_time"`
	UserID    int64   `bun:"user_id" json:"user_id"`
	CreatedAt string  `bun:"created_at" json:"created_at"`
	UserName  string  `bun:"user_name" json:"user_name"`
	UserColor string  `bun:"user_color" json:"user_color"`
}
