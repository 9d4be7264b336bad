package db

import (
	"context"
	"fmt"

	"family-calendar/internal/models"

	"github.com/uptrace/bun"
)

// familyMembers is the one-time seed data. Colors are distinct display
// tokens, one per member.
var familyMembers = []models.User{
	{Name: "Family Member A", Color: "#4A90D9"},
	{Name: "Family Member B", Color: "#D94A4A"},
	{Name: "Family Member C", Color: "#4AD97B"},
	{Name: "Family Member D", Color: "#D9A84A"},
}

// Migrate creates the two tables and the date index if they are missing,
// and seeds the family members the first time it runs against an empty
// users table. Safe to call on every startup.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Event)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*models.Event)(nil)).
		Index("idx_events_date").
		Column("date").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create date index: %w", err)
	}

	count, err := db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count == 0 {
		members := make([]models.User, len(familyMembers))
		copy(members, familyMembers)
		if _, err := db.NewInsert().Model(&members).Exec(ctx); err != nil {
			return fmt.Errorf("seed family members: %w", err)
		}
	}

	return nil
}
