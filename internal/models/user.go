package models

import "github.com/uptrace/bun"

// User is one family member. Users are seeded once at startup and are
// read-only through the API.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Name  string `bun:"name,notnull,unique" json:"name"`
	Color string `bun:"color,notnull" json:"color"`
}
