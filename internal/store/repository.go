// Package store normalizes upstream store records and persists stores with
// their opening hours.
package store

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/model"
)

type Repository interface {
	FindByExternalID(ctx context.Context, externalID string) (*model.Store, error)
	FindAll(ctx context.Context) ([]model.Store, error)
	// Upsert inserts the store or updates name and slug of the row with the
	// same external id, returning the persisted row.
	Upsert(ctx context.Context, s *model.Store) (*model.Store, error)
	// ReplaceHours upserts one row per weekday and drops weekdays absent from
	// hours, in one transaction.
	ReplaceHours(ctx context.Context, storeID string, hours []model.OpeningHours) error
	FindHours(ctx context.Context, storeID string) ([]model.OpeningHours, error)
}
