package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/bjorheimar/catalog-sync/internal/pkg/database/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeholderCategory(code string) model.ProductCategory {
	now := time.Now().UTC()
	return model.ProductCategory{
		BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		ExternalCode: code,
		Name:         model.UnknownCategoryName,
		Description:  model.UnknownCategoryName,
	}
}

func placeholderProfile(code, categoryID string) model.TasteProfile {
	now := time.Now().UTC()
	return model.TasteProfile{
		BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		ExternalCode: code,
		Name:         model.UnknownTasteProfileName,
		Description:  model.UnknownTasteProfileName,
		CategoryID:   categoryID,
	}
}

func TestCreateCategoriesAndProfiles_Idempotent(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.CreateCategories(ctx, []model.ProductCategory{placeholderCategory("10"), placeholderCategory("11")})
		require.NoError(t, err)

		cat, err := repo.FindByExternalCode(ctx, "10")
		require.NoError(t, err)
		_, err = repo.CreateProfiles(ctx, []model.TasteProfile{placeholderProfile("101", cat.ID)})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, dbtest.Count(t, db, "product_categories", ""))
	assert.Equal(t, 1, dbtest.Count(t, db, "taste_profiles", ""))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "10", all[0].ExternalCode)
	require.Len(t, all[0].TasteProfiles, 1)
	assert.Equal(t, "101", all[0].TasteProfiles[0].ExternalCode)
	assert.Empty(t, all[1].TasteProfiles)
}

func TestFindByExternalCode_Missing(t *testing.T) {
	repo := NewPGRepository(dbtest.New(t))
	cat, err := repo.FindByExternalCode(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, cat)
}

func TestUpsertTaxonomy_ReplacesPlaceholdersOnly(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	placeholder := placeholderCategory("10")
	_, err := repo.CreateCategories(ctx, []model.ProductCategory{placeholder})
	require.NoError(t, err)
	_, err = repo.CreateProfiles(ctx, []model.TasteProfile{placeholderProfile("101", placeholder.ID)})
	require.NoError(t, err)

	reference := []model.ProductCategory{
		{
			ExternalCode: "10", Name: "Ljós lagerbjór", Description: "Ljós lagerbjór",
			TasteProfiles: []model.TasteProfile{
				{ExternalCode: "101", Name: "Léttur", Description: "Léttur"},
				{ExternalCode: "102", Name: "Humlaður", Description: "Humlaður"},
			},
		},
		{ExternalCode: "11", Name: "Rafbjór", Description: "Rafbjór"},
	}
	require.NoError(t, repo.UpsertTaxonomy(ctx, reference))

	cat, err := repo.FindByExternalCode(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, placeholder.ID, cat.ID)
	assert.Equal(t, "Ljós lagerbjór", cat.Name)
	require.Len(t, cat.TasteProfiles, 2)
	assert.Equal(t, "Léttur", cat.TasteProfiles[0].Name)

	// Real names are not overwritten by a later run.
	reference[0].Name = "Renamed"
	reference[0].TasteProfiles[0].Name = "Renamed"
	require.NoError(t, repo.UpsertTaxonomy(ctx, reference))

	cat, err = repo.FindByExternalCode(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, "Ljós lagerbjór", cat.Name)
	assert.Equal(t, "Léttur", cat.TasteProfiles[0].Name)

	assert.Equal(t, 2, dbtest.Count(t, db, "product_categories", ""))
	assert.Equal(t, 2, dbtest.Count(t, db, "taste_profiles", ""))
}
