package inventory

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/inventory/dto"
	"github.com/bjorheimar/catalog-sync/internal/model"
)

type Repository interface {
	// ArchiveLatest clears is_latest on every current row of the store and
	// returns the number of rows archived.
	ArchiveLatest(ctx context.Context, storeID string) (int64, error)
	// InsertBatch appends entries in one transaction.
	InsertBatch(ctx context.Context, entries []model.InventoryEntry) error
	// ReplaceLatest archives and inserts in one transaction; on error the
	// previous snapshot is left untouched.
	ReplaceLatest(ctx context.Context, storeID string, entries []model.InventoryEntry) (int64, error)

	FindLatest(ctx context.Context, filters *dto.LatestFilters) ([]model.InventoryEntry, error)
	// CountLatestByProduct returns, per product, how many latest rows the
	// store holds.
	CountLatestByProduct(ctx context.Context, storeID string) (map[string]int, error)
}
