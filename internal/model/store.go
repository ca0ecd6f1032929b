package model

import "time"

type Store struct {
	BaseModel
	ExternalID string         `db:"external_id" json:"external_id"`
	Name       string         `db:"name" json:"name"`
	Slug       string         `db:"slug" json:"slug"`
	Hours      []OpeningHours `db:"-" json:"hours"`
}

// OpeningHours holds one weekday (0 = Sunday) for a store. Times are minutes
// after midnight.
type OpeningHours struct {
	StoreID         string    `db:"store_id" json:"store_id"`
	Weekday         int       `db:"weekday" json:"weekday"`
	OpensAtMinutes  int       `db:"opens_at_minutes" json:"opens_at_minutes"`
	ClosesAtMinutes int       `db:"closes_at_minutes" json:"closes_at_minutes"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
