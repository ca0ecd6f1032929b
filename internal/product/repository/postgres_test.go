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

func newProduct(externalID string, image *string) model.Product {
	now := time.Now().UTC()
	return model.Product{
		BaseModel:      model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		ExternalID:     externalID,
		Name:           "Beer " + externalID,
		ManufacturerID: "m1",
		CategoryID:     "c1",
		TasteProfileID: "t1",
		ContainerType:  model.ContainerCan,
		VolumeMl:       330,
		AlcoholPercent: 5.2,
		PlaceOfOrigin:  "Ísland",
		ImageURL:       image,
	}
}

func TestCreateMany_IdempotentPerExternalID(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	n, err := repo.CreateMany(ctx, []model.Product{newProduct("1", nil), newProduct("2", nil)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CreateMany(ctx, []model.Product{newProduct("2", nil), newProduct("3", nil)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	p, err := repo.FindByExternalID(ctx, "3")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.ContainerCan, p.ContainerType)
	assert.Nil(t, p.Description)

	missing, err := repo.FindByExternalID(ctx, "404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindExisting_LatestQuantityPerStore(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	img := "/images/00001.jpg"
	p1 := newProduct("1", &img)
	p2 := newProduct("2", nil)
	_, err := repo.CreateMany(ctx, []model.Product{p1, p2})
	require.NoError(t, err)

	insert := db.Rebind(`INSERT INTO inventory_entries
		(id, store_id, product_id, external_product_id, quantity, price, available, is_latest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = db.Exec(insert, uuid.NewString(), "s1", p1.ID, "1", 4, "100", true, false, base)
	require.NoError(t, err)
	_, err = db.Exec(insert, uuid.NewString(), "s1", p1.ID, "1", 9, "100", true, true, base.Add(time.Hour))
	require.NoError(t, err)
	_, err = db.Exec(insert, uuid.NewString(), "s2", p1.ID, "1", 1, "100", true, true, base.Add(2*time.Hour))
	require.NoError(t, err)

	existing, err := repo.FindExisting(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, existing, 2)
	assert.Equal(t, 9, existing["1"].Quantity)
	assert.Equal(t, p1.ID, existing["1"].ID)
	assert.Equal(t, 0, existing["2"].Quantity)

	global, err := repo.FindExisting(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, global["1"].Quantity)
}

func TestFindIDsByExternalIDs(t *testing.T) {
	repo := NewPGRepository(dbtest.New(t))
	ctx := context.Background()

	p := newProduct("7", nil)
	_, err := repo.CreateMany(ctx, []model.Product{p})
	require.NoError(t, err)

	ids, err := repo.FindIDsByExternalIDs(ctx, []string{"7", "8"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"7": p.ID}, ids)

	ids, err = repo.FindIDsByExternalIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
