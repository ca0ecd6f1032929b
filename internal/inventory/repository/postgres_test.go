package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/inventory/dto"
	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/bjorheimar/catalog-sync/internal/pkg/database/dbtest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(storeID, productID string, qty int, price string) model.InventoryEntry {
	return model.InventoryEntry{
		ID:                uuid.NewString(),
		StoreID:           storeID,
		ProductID:         productID,
		ExternalProductID: "ext-" + productID,
		Quantity:          qty,
		Price:             decimal.RequireFromString(price),
		Available:         qty > 0,
		IsLatest:          true,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestArchiveThenInsert(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []model.InventoryEntry{
		entry("s1", "p1", 3, "459.50"),
		entry("s1", "p2", 0, "699"),
		entry("s2", "p1", 8, "459.50"),
	}))

	archived, err := repo.ArchiveLatest(ctx, "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, archived)

	require.NoError(t, repo.InsertBatch(ctx, []model.InventoryEntry{entry("s1", "p1", 5, "479")}))

	latest, err := repo.FindLatest(ctx, &dto.LatestFilters{StoreID: "s1"})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 5, latest[0].Quantity)
	assert.True(t, decimal.NewFromInt(479).Equal(latest[0].Price))

	// Other stores are untouched.
	other, err := repo.FindLatest(ctx, &dto.LatestFilters{StoreID: "s2"})
	require.NoError(t, err)
	assert.Len(t, other, 1)

	assert.Equal(t, 4, dbtest.Count(t, db, "inventory_entries", ""))
}

func TestInsertBatch_SecondLatestRejected(t *testing.T) {
	repo := NewPGRepository(dbtest.New(t))
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []model.InventoryEntry{entry("s1", "p1", 1, "100")}))
	err := repo.InsertBatch(ctx, []model.InventoryEntry{entry("s1", "p1", 2, "100")})
	assert.Error(t, err)

	counts, err := repo.CountLatestByProduct(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 1}, counts)
}

func TestInsertBatch_AllOrNothing(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	dup := entry("s1", "p1", 1, "100")
	err := repo.InsertBatch(ctx, []model.InventoryEntry{entry("s1", "p2", 1, "100"), dup, dup})
	require.Error(t, err)
	assert.Equal(t, 0, dbtest.Count(t, db, "inventory_entries", ""))
}

func TestReplaceLatest_RollsBackOnFailure(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPGRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []model.InventoryEntry{entry("s1", "p1", 1, "100"), entry("s1", "p2", 1, "100")}))

	dup := entry("s1", "p3", 1, "100")
	_, err := repo.ReplaceLatest(ctx, "s1", []model.InventoryEntry{dup, dup})
	require.Error(t, err)

	latest, err := repo.FindLatest(ctx, &dto.LatestFilters{StoreID: "s1"})
	require.NoError(t, err)
	assert.Len(t, latest, 2)

	archived, err := repo.ReplaceLatest(ctx, "s1", []model.InventoryEntry{entry("s1", "p3", 4, "250")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, archived)

	latest, err = repo.FindLatest(ctx, &dto.LatestFilters{StoreID: "s1"})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "p3", latest[0].ProductID)
}

func TestFindLatest_Filters(t *testing.T) {
	repo := NewPGRepository(dbtest.New(t))
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []model.InventoryEntry{
		entry("s1", "p1", 0, "100"),
		entry("s1", "p2", 2, "100"),
		entry("s2", "p2", 2, "100"),
	}))

	available, err := repo.FindLatest(ctx, &dto.LatestFilters{StoreID: "s1", AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "p2", available[0].ProductID)

	byProduct, err := repo.FindLatest(ctx, &dto.LatestFilters{ProductID: "p2"})
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	all, err := repo.FindLatest(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReplaceLatest_EmptySnapshot(t *testing.T) {
	repo := NewPGRepository(dbtest.New(t))
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []model.InventoryEntry{entry("s1", "p1", 1, "100")}))
	archived, err := repo.ReplaceLatest(ctx, "s1", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, archived)

	latest, err := repo.FindLatest(ctx, &dto.LatestFilters{StoreID: "s1"})
	require.NoError(t, err)
	assert.Empty(t, latest)
}
