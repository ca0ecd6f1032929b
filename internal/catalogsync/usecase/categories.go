package usecase

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/model"
	"golang.org/x/sync/errgroup"
)

// SyncCategories loads the reference taste categories and their
// subcategories and writes them in one transaction.
func (uc *syncUseCase) SyncCategories(ctx context.Context) (*dto.SyncSummary, error) {
	summary := uc.begin(catalogsync.ScopeCategories, "")

	cats, err := uc.Upstream.ListTasteCategories(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ProductCategory, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Fanout)
	for i := range cats {
		rows[i] = model.ProductCategory{
			ExternalCode: cats[i].ID,
			Name:         cats[i].Description,
			Description:  cats[i].Description,
		}
		g.Go(func() error {
			subs, err := uc.Upstream.ListTasteSubcategories(gctx, cats[i].ID)
			if err != nil {
				return err
			}
			profiles := make([]model.TasteProfile, 0, len(subs))
			for _, s := range subs {
				profiles = append(profiles, model.TasteProfile{
					ExternalCode: s.ID,
					Name:         s.Description,
					Description:  s.Description,
				})
			}
			rows[i].TasteProfiles = profiles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	before, err := uc.Categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.Categories.UpsertTaxonomy(ctx, rows); err != nil {
		return nil, err
	}
	after, err := uc.Categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	summary.Fetched = len(rows)
	summary.CategoriesCreated = len(after) - len(before)
	summary.ProfilesCreated = countProfiles(after) - countProfiles(before)
	return uc.finish(summary), nil
}

func countProfiles(categories []model.ProductCategory) int {
	n := 0
	for _, c := range categories {
		n += len(c.TasteProfiles)
	}
	return n
}
