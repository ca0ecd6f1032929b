package product

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/model"
)

type Repository interface {
	// FindExisting returns every product keyed by external id, with the most
	// recent quantity recorded at storeID (0 when storeID is empty or the
	// product was never stocked there).
	FindExisting(ctx context.Context, storeID string) (map[string]model.ExistingProduct, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.Product, error)
	// FindIDsByExternalIDs maps external ids to product ids. Unknown ids are
	// absent from the result.
	FindIDsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]string, error)
	// CreateMany inserts products whose external id is new and returns how
	// many rows were created.
	CreateMany(ctx context.Context, products []model.Product) (int, error)
	Count(ctx context.Context) (int, error)
}
