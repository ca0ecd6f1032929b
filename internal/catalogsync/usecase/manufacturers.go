package usecase

import (
	"context"
	"fmt"

	"github.com/bjorheimar/catalog-sync/internal/atvr"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/fuzzy"
	"go.uber.org/zap"
)

// manufacturerIndex builds a fresh fuzzy index over the persisted
// manufacturer names. It is never shared between runs.
func (uc *syncUseCase) manufacturerIndex(ctx context.Context) (*fuzzy.Matcher, error) {
	all, err := uc.Manufacturers.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load manufacturers: %w", err)
	}
	m := fuzzy.New(uc.opts.FuzzyThreshold)
	for _, mf := range all {
		m.AddUnique(mf.Name)
	}
	return m, nil
}

func canonicalName(m *fuzzy.Matcher, raw string) string {
	if name, ok := m.Get(raw); ok {
		return name
	}
	return raw
}

// resolveManufacturers maps each product's external id to a manufacturer id,
// creating rows for producers that match no existing manufacturer.
func (uc *syncUseCase) resolveManufacturers(ctx context.Context, products []atvr.Product) (map[string]string, int, error) {
	index, err := uc.manufacturerIndex(ctx)
	if err != nil {
		return nil, 0, err
	}

	names := make(map[string]string, len(products)) // external id -> canonical name
	wanted := make([]string, 0, len(products))
	seen := map[string]bool{}
	for i := range products {
		name := canonicalName(index, products[i].ProductProducer)
		names[products[i].ExternalID()] = name
		if !seen[name] {
			seen[name] = true
			wanted = append(wanted, name)
		}
	}

	ids, err := uc.Manufacturers.FindByNames(ctx, wanted)
	if err != nil {
		return nil, 0, err
	}

	var missing []string
	for _, n := range wanted {
		if _, ok := ids[n]; !ok {
			missing = append(missing, n)
		}
	}

	created := 0
	if len(missing) > 0 {
		if created, err = uc.Manufacturers.CreateMany(ctx, missing); err != nil {
			return nil, 0, fmt.Errorf("create manufacturers: %w", err)
		}
		uc.logger.Info("created manufacturers", zap.Int("count", created), zap.Strings("names", missing))
		if ids, err = uc.Manufacturers.FindByNames(ctx, wanted); err != nil {
			return nil, 0, err
		}
	}

	byProduct := make(map[string]string, len(products))
	for externalID, name := range names {
		id, ok := ids[name]
		if !ok {
			return nil, 0, &catalogsync.ManufacturerResolutionError{ProductExternalID: externalID, Name: name}
		}
		byProduct[externalID] = id
	}
	return byProduct, created, nil
}

func (uc *syncUseCase) SyncManufacturers(ctx context.Context) (*dto.SyncSummary, error) {
	summary := uc.begin(catalogsync.ScopeManufacturers, "")

	producers, err := uc.Upstream.ListProducers(ctx)
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(producers)

	index, err := uc.manufacturerIndex(ctx)
	if err != nil {
		return nil, err
	}

	// Spelling variants inside the upstream list collapse onto the first one.
	batch := fuzzy.New(uc.opts.FuzzyThreshold)
	var missing []string
	for _, name := range producers {
		if name == "" {
			continue
		}
		if _, ok := index.Get(name); ok {
			continue
		}
		if batch.AddUnique(name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		n, err := uc.Manufacturers.CreateMany(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("create manufacturers: %w", err)
		}
		summary.ManufacturersCreated = n
	}
	return uc.finish(summary), nil
}
