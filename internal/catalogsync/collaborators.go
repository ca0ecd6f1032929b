package catalogsync

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/atvr"
	"github.com/bjorheimar/catalog-sync/internal/model"
)

// Upstream is the part of the ATVR client the sync pipeline reads from.
type Upstream interface {
	ListStores(ctx context.Context) ([]atvr.Store, error)
	ListProducers(ctx context.Context) ([]string, error)
	ListTasteCategories(ctx context.Context) ([]atvr.TasteCategory, error)
	ListTasteSubcategories(ctx context.Context, categoryCode string) ([]atvr.TasteSubcategory, error)
	FetchAllProducts(ctx context.Context, storeExternalID string) ([]atvr.Product, error)
}

// ImageResolver stores a product image and returns the URL to serve it from.
type ImageResolver interface {
	Resolve(ctx context.Context, sourceURL, externalID string) (string, error)
}

type DescriptionFetcher interface {
	Fetch(ctx context.Context, externalID string) (string, error)
}

// ProductIndexer receives newly created products, e.g. for search.
type ProductIndexer interface {
	IndexProducts(ctx context.Context, products []model.Product) error
}
