package category

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/model"
)

type Repository interface {
	// FindAll returns every category with its taste profiles attached.
	FindAll(ctx context.Context) ([]model.ProductCategory, error)
	FindByExternalCode(ctx context.Context, code string) (*model.ProductCategory, error)

	// CreateCategories and CreateProfiles insert rows whose external code is
	// not yet present and leave existing rows untouched. They return the
	// number of rows created.
	CreateCategories(ctx context.Context, categories []model.ProductCategory) (int, error)
	CreateProfiles(ctx context.Context, profiles []model.TasteProfile) (int, error)

	// UpsertTaxonomy writes reference categories and their profiles in one
	// transaction. Existing rows are renamed only while they still carry a
	// placeholder name.
	UpsertTaxonomy(ctx context.Context, categories []model.ProductCategory) error
}
