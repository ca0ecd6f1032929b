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
	"golang.org/x/sync/errgroup"
)

func parseContainerType(raw string) (model.ContainerType, bool) {
	switch raw {
	case "DS.":
		return model.ContainerCan, true
	case "FL.":
		return model.ContainerBottle, true
	case "ASKJA":
		return model.ContainerBox, true
	case "GJAFAASKJA":
		return model.ContainerGiftbox, true
	}
	return model.ContainerOther, false
}

// prepare validates fetched records and drops repeated external ids, keeping
// the first occurrence. Nothing is written.
func prepare(products []atvr.Product, storeExternalID string) ([]atvr.Product, error) {
	requireStore := storeExternalID != ""
	out := make([]atvr.Product, 0, len(products))
	seen := make(map[int]bool, len(products))
	for i := range products {
		if err := products[i].Validate(requireStore); err != nil {
			return nil, &catalogsync.ValidationError{StoreExternalID: storeExternalID, Err: err}
		}
		if seen[products[i].ProductID] {
			continue
		}
		seen[products[i].ProductID] = true
		out = append(out, products[i])
	}
	return out, nil
}

func partitionNew(products []atvr.Product, existing map[string]model.ExistingProduct) []atvr.Product {
	var fresh []atvr.Product
	for i := range products {
		if _, ok := existing[products[i].ExternalID()]; !ok {
			fresh = append(fresh, products[i])
		}
	}
	return fresh
}

// createProducts inserts the given upstream products, which must not exist
// locally yet. Manufacturers and taxonomy are resolved first; images and
// descriptions are fetched concurrently and never fail the run.
func (uc *syncUseCase) createProducts(ctx context.Context, fresh []atvr.Product, summary *dto.SyncSummary) error {
	if len(fresh) == 0 {
		return nil
	}

	manufacturers, created, err := uc.resolveManufacturers(ctx, fresh)
	if err != nil {
		return err
	}
	summary.ManufacturersCreated += created

	prov, err := uc.provisionTaxonomy(ctx, fresh)
	if err != nil {
		return err
	}
	summary.CategoriesCreated += prov.categoriesCreated
	summary.ProfilesCreated += prov.profilesCreated

	now := uc.now()
	rows := make([]model.Product, len(fresh))
	for i := range fresh {
		p := &fresh[i]
		categoryID, profileID, err := uc.resolve(prov.tax, p)
		if err != nil {
			return err
		}
		container, known := parseContainerType(p.ProductContainerType)
		if !known {
			uc.logger.Warn("unrecognized container type",
				zap.String("product", p.ExternalID()),
				zap.String("container_type", p.ProductContainerType),
			)
		}
		rows[i] = model.Product{
			BaseModel:      model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
			ExternalID:     p.ExternalID(),
			Name:           p.ProductName,
			ManufacturerID: manufacturers[p.ExternalID()],
			CategoryID:     categoryID,
			TasteProfileID: profileID,
			ContainerType:  container,
			VolumeMl:       p.ProductBottledVolume,
			AlcoholPercent: p.ProductAlchoholVolume,
			PlaceOfOrigin:  p.ProductCountryOfOrigin,
			IsTemporary:    p.ProductIsTemporaryOnSale,
		}
	}

	if err := uc.enrich(ctx, rows); err != nil {
		return err
	}

	n, err := uc.Products.CreateMany(ctx, rows)
	if err != nil {
		return fmt.Errorf("create products: %w", err)
	}
	summary.ProductsCreated += n
	uc.logger.Info("created products", zap.Int("count", n), zap.Int("new", len(rows)))

	if uc.Indexer != nil {
		if err := uc.Indexer.IndexProducts(ctx, rows); err != nil {
			uc.logger.Warn("failed to index products", zap.Error(err))
		}
	}
	return nil
}

// enrich fills image and description for each row with bounded fan-out. It
// only returns an error when ctx is cancelled.
func (uc *syncUseCase) enrich(ctx context.Context, rows []model.Product) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Fanout)

	for i := range rows {
		row := &rows[i]
		g.Go(func() error {
			row.ImageURL = uc.image(gctx, row.ExternalID)
			row.Description = uc.description(gctx, row.ExternalID)
			return gctx.Err()
		})
	}
	return g.Wait()
}

// image copies the upstream picture through the image store, which reuses a
// file it already holds.
func (uc *syncUseCase) image(ctx context.Context, externalID string) *string {
	if uc.Images == nil || uc.opts.ImageBaseURL == "" {
		return nil
	}
	url, err := uc.Images.Resolve(ctx, atvr.ImageURL(uc.opts.ImageBaseURL, externalID), externalID)
	if err != nil {
		uc.logger.Warn("image upload failed", zap.String("product", externalID), zap.Error(err))
		return nil
	}
	return &url
}

func (uc *syncUseCase) description(ctx context.Context, externalID string) *string {
	if uc.Descriptions == nil {
		return nil
	}
	text, err := uc.Descriptions.Fetch(ctx, externalID)
	if err != nil {
		uc.logger.Warn("description scrape failed", zap.String("product", externalID), zap.Error(err))
		return nil
	}
	if text == "" {
		return nil
	}
	return &text
}

func (uc *syncUseCase) SyncProducts(ctx context.Context) (*dto.SyncSummary, error) {
	summary := uc.begin(catalogsync.ScopeProducts, "")

	fetched, err := uc.Upstream.FetchAllProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(fetched)

	products, err := prepare(fetched, "")
	if err != nil {
		return nil, err
	}

	existing, err := uc.Products.FindExisting(ctx, "")
	if err != nil {
		return nil, err
	}

	if err := uc.createProducts(ctx, partitionNew(products, existing), summary); err != nil {
		return nil, err
	}
	return uc.finish(summary), nil
}
