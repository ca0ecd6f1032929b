// Package indexer feeds newly created products to the search index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bjorheimar/catalog-sync/internal/model"
)

const IndexName = "products"

const mapping = `{
	"mappings": {
		"properties": {
			"external_id": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"manufacturer_id": { "type": "keyword" },
			"category_id": { "type": "keyword" },
			"taste_profile_id": { "type": "keyword" },
			"container_type": { "type": "keyword" },
			"volume_ml": { "type": "double" },
			"alcohol_percent": { "type": "double" },
			"place_of_origin": { "type": "keyword" },
			"is_temporary": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

// Index is the part of search.Client the indexer uses.
type Index interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
}

type ProductIndexer struct {
	es Index

	mu      sync.Mutex
	created bool
}

func New(es Index) *ProductIndexer {
	return &ProductIndexer{es: es}
}

// IndexProducts upserts one document per product, keyed by product id. All
// products are attempted; the failures are joined.
func (p *ProductIndexer) IndexProducts(ctx context.Context, products []model.Product) error {
	if err := p.ensureIndex(ctx); err != nil {
		return err
	}
	var errs []error
	for i := range products {
		if err := p.es.Index(ctx, IndexName, products[i].ID, &products[i]); err != nil {
			errs = append(errs, fmt.Errorf("product %s: %w", products[i].ExternalID, err))
		}
	}
	return errors.Join(errs...)
}

func (p *ProductIndexer) ensureIndex(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.created {
		return nil
	}
	if err := p.es.CreateIndex(ctx, IndexName, mapping); err != nil {
		return fmt.Errorf("create %s index: %w", IndexName, err)
	}
	p.created = true
	return nil
}
