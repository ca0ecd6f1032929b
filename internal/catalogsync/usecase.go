// Package catalogsync keeps the local beer catalog in step with the ATVR
// catalog: stores, manufacturers, taxonomy, products and per-store inventory
// snapshots.
package catalogsync

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
)

type UseCase interface {
	SyncStores(ctx context.Context) (*dto.SyncSummary, error)
	SyncManufacturers(ctx context.Context) (*dto.SyncSummary, error)
	SyncCategories(ctx context.Context) (*dto.SyncSummary, error)
	// SyncProducts creates products present upstream but missing locally,
	// without touching inventory.
	SyncProducts(ctx context.Context) (*dto.SyncSummary, error)
	// SyncStoreInventory replaces the store's latest inventory snapshot.
	SyncStoreInventory(ctx context.Context, storeExternalID string) (*dto.SyncSummary, error)
	// SyncCatalog runs manufacturers, categories and products in that order.
	SyncCatalog(ctx context.Context) (*dto.SyncSummary, error)
	// SyncAll seeds everything: stores, catalog, then inventory for each
	// listed store. It stops at the first error.
	SyncAll(ctx context.Context, storeExternalIDs []string) (*dto.SyncSummary, error)
}
