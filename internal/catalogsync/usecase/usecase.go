package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/category"
	"github.com/bjorheimar/catalog-sync/internal/inventory"
	"github.com/bjorheimar/catalog-sync/internal/manufacturer"
	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"github.com/bjorheimar/catalog-sync/internal/product"
	"github.com/bjorheimar/catalog-sync/internal/store"
	"go.uber.org/zap"
)

// Dependencies wires the use case. Images, Descriptions and Indexer are
// optional; without them products are created with no image, no description
// and are not indexed.
type Dependencies struct {
	Upstream      catalogsync.Upstream
	Manufacturers manufacturer.Repository
	Categories    category.Repository
	Products      product.Repository
	Stores        store.Repository
	Inventory     inventory.Repository
	Images        catalogsync.ImageResolver
	Descriptions  catalogsync.DescriptionFetcher
	Indexer       catalogsync.ProductIndexer
}

type syncUseCase struct {
	Dependencies
	opts   catalogsync.Options
	logger logger.Logger
	now    func() time.Time
}

func NewSyncUseCase(deps Dependencies, opts catalogsync.Options, log logger.Logger) (catalogsync.UseCase, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newSyncUseCase(deps, opts, log), nil
}

func newSyncUseCase(deps Dependencies, opts catalogsync.Options, log logger.Logger) *syncUseCase {
	return &syncUseCase{
		Dependencies: deps,
		opts:         opts,
		logger:       log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (uc *syncUseCase) begin(scope catalogsync.Scope, storeExternalID string) *dto.SyncSummary {
	return &dto.SyncSummary{Scope: string(scope), StoreExternalID: storeExternalID, StartedAt: uc.now()}
}

func (uc *syncUseCase) finish(s *dto.SyncSummary) *dto.SyncSummary {
	s.FinishedAt = uc.now()
	uc.logger.Info("sync finished",
		zap.String("scope", s.Scope),
		zap.String("store", s.StoreExternalID),
		zap.Int("fetched", s.Fetched),
		zap.Int("products_created", s.ProductsCreated),
		zap.Int("manufacturers_created", s.ManufacturersCreated),
		zap.Int("categories_created", s.CategoriesCreated),
		zap.Int("profiles_created", s.ProfilesCreated),
		zap.Int64("inventory_archived", s.InventoryArchived),
		zap.Int("inventory_inserted", s.InventoryInserted),
		zap.Duration("took", s.Duration()),
	)
	return s
}

func (uc *syncUseCase) SyncCatalog(ctx context.Context) (*dto.SyncSummary, error) {
	summary := uc.begin(catalogsync.ScopeCatalog, "")
	steps := []func(context.Context) (*dto.SyncSummary, error){
		uc.SyncManufacturers,
		uc.SyncCategories,
		uc.SyncProducts,
	}
	for _, step := range steps {
		s, err := step(ctx)
		if err != nil {
			return nil, err
		}
		summary.Merge(s)
	}
	return uc.finish(summary), nil
}

func (uc *syncUseCase) SyncAll(ctx context.Context, storeExternalIDs []string) (*dto.SyncSummary, error) {
	summary := uc.begin(catalogsync.ScopeAll, "")

	s, err := uc.SyncStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync stores: %w", err)
	}
	summary.Merge(s)

	s, err = uc.SyncCatalog(ctx)
	if err != nil {
		return nil, err
	}
	summary.Merge(s)

	for _, id := range storeExternalIDs {
		s, err := uc.SyncStoreInventory(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("sync inventory for store %s: %w", id, err)
		}
		summary.Merge(s)
	}
	return uc.finish(summary), nil
}
