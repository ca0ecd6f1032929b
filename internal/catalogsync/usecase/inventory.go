package usecase

import (
	"context"
	"fmt"

	"github.com/bjorheimar/catalog-sync/internal/atvr"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncStoreInventory runs fetch, product creation, archive and insert for one
// store, strictly in that order.
func (uc *syncUseCase) SyncStoreInventory(ctx context.Context, storeExternalID string) (*dto.SyncSummary, error) {
	summary := uc.begin(catalogsync.ScopeInventory, storeExternalID)
	log := uc.logger.With(zap.String("store", storeExternalID))

	st, err := uc.Stores.FindByExternalID(ctx, storeExternalID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: %s", catalogsync.ErrStoreNotFound, storeExternalID)
	}

	fetched, err := uc.Upstream.FetchAllProducts(ctx, storeExternalID)
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(fetched)

	products, err := prepare(fetched, storeExternalID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.Products.FindExisting(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	log.Info("performing inventory sync", zap.Int("fetched", len(products)), zap.Int("known_products", len(existing)))

	if err := uc.createProducts(ctx, partitionNew(products, existing), summary); err != nil {
		return nil, err
	}

	entries, err := uc.snapshot(ctx, st, products, existing, summary)
	if err != nil {
		return nil, err
	}

	switch uc.opts.Archive {
	case catalogsync.ArchiveAtomic:
		archived, err := uc.Inventory.ReplaceLatest(ctx, st.ID, entries)
		if err != nil {
			return nil, fmt.Errorf("replace inventory snapshot: %w", err)
		}
		summary.InventoryArchived = archived
	default:
		archived, err := uc.Inventory.ArchiveLatest(ctx, st.ID)
		if err != nil {
			return nil, fmt.Errorf("archive inventory: %w", err)
		}
		summary.InventoryArchived = archived
		log.Info("archived inventory entries", zap.Int64("count", archived))

		if err := uc.Inventory.InsertBatch(ctx, entries); err != nil {
			return nil, fmt.Errorf("insert inventory snapshot: %w", err)
		}
	}
	summary.InventoryInserted = len(entries)

	return uc.finish(summary), nil
}

// snapshot builds one latest entry per product, resolved to local product ids.
func (uc *syncUseCase) snapshot(ctx context.Context, st *model.Store, products []atvr.Product, existing map[string]model.ExistingProduct, summary *dto.SyncSummary) ([]model.InventoryEntry, error) {
	externalIDs := make([]string, len(products))
	for i := range products {
		externalIDs[i] = products[i].ExternalID()
	}
	ids, err := uc.Products.FindIDsByExternalIDs(ctx, externalIDs)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	entries := make([]model.InventoryEntry, 0, len(products))
	for i := range products {
		p := &products[i]
		productID, ok := ids[p.ExternalID()]
		if !ok {
			return nil, fmt.Errorf("product %s has no row after creation", p.ExternalID())
		}
		qty := p.StoreQuantity()
		if prev, ok := existing[p.ExternalID()]; ok && prev.Quantity != qty {
			summary.QuantityChanged++
		}
		entries = append(entries, model.InventoryEntry{
			ID:                uuid.NewString(),
			StoreID:           st.ID,
			ProductID:         productID,
			ExternalProductID: p.ExternalID(),
			Quantity:          qty,
			Price:             p.ProductPrice,
			Available:         p.ProductIsAvailableInStores,
			IsLatest:          true,
			CreatedAt:         now,
		})
	}
	return entries, nil
}
