package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/bjorheimar/catalog-sync/internal/inventory/dto"
	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/bjorheimar/catalog-sync/internal/pkg/database"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var entryColumns = []string{
	"id", "store_id", "product_id", "external_product_id",
	"quantity", "price", "available", "is_latest", "created_at",
}

func (r *PGRepository) ArchiveLatest(ctx context.Context, storeID string) (int64, error) {
	return archive(ctx, r.DB, database.Builder(r.DB), storeID)
}

func (r *PGRepository) InsertBatch(ctx context.Context, entries []model.InventoryEntry) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insert(ctx, tx, database.Builder(r.DB), entries); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) ReplaceLatest(ctx context.Context, storeID string, entries []model.InventoryEntry) (int64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	sb := database.Builder(r.DB)
	archived, err := archive(ctx, tx, sb, storeID)
	if err != nil {
		return 0, err
	}
	if err := insert(ctx, tx, sb, entries); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return archived, nil
}

func (r *PGRepository) FindLatest(ctx context.Context, f *dto.LatestFilters) ([]model.InventoryEntry, error) {
	q := database.Builder(r.DB).
		Select(entryColumns...).
		From("inventory_entries").
		Where(sq.Eq{"is_latest": true}).
		OrderBy("store_id", "external_product_id")

	if f != nil {
		if f.StoreID != "" {
			q = q.Where(sq.Eq{"store_id": f.StoreID})
		}
		if f.ProductID != "" {
			q = q.Where(sq.Eq{"product_id": f.ProductID})
		}
		if f.AvailableOnly {
			q = q.Where(sq.Eq{"available": true})
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.InventoryEntry
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) CountLatestByProduct(ctx context.Context, storeID string) (map[string]int, error) {
	query, args, err := database.Builder(r.DB).
		Select("product_id", "count(*) AS n").
		From("inventory_entries").
		Where(sq.Eq{"store_id": storeID, "is_latest": true}).
		GroupBy("product_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ProductID string `db:"product_id"`
		N         int    `db:"n"`
	}
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ProductID] = row.N
	}
	return counts, nil
}

func archive(ctx context.Context, exec sqlx.ExecerContext, sb sq.StatementBuilderType, storeID string) (int64, error) {
	query, args, err := sb.Update("inventory_entries").
		Set("is_latest", false).
		Where(sq.Eq{"store_id": storeID, "is_latest": true}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insert(ctx context.Context, exec sqlx.ExecerContext, sb sq.StatementBuilderType, entries []model.InventoryEntry) error {
	for _, c := range database.Chunks(len(entries), database.BatchSize) {
		q := sb.Insert("inventory_entries").Columns(entryColumns...)
		for _, e := range entries[c[0]:c[1]] {
			q = q.Values(e.ID, e.StoreID, e.ProductID, e.ExternalProductID,
				e.Quantity, e.Price, e.Available, e.IsLatest, e.CreatedAt)
		}
		query, args, err := q.ToSql()
		if err != nil {
			return err
		}
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}
