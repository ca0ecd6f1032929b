package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *PGRepository) FindExisting(ctx context.Context, storeID string) (map[string]model.ExistingProduct, error) {
	query := `
        SELECT p.id, p.external_id,
            COALESCE((
                SELECT ie.quantity FROM inventory_entries ie
                WHERE ie.product_id = p.id AND ie.store_id = ?
                ORDER BY ie.created_at DESC
                LIMIT 1
            ), 0) AS quantity
        FROM products p
    `
	var rows []model.ExistingProduct
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), storeID); err != nil {
		return nil, err
	}

	existing := make(map[string]model.ExistingProduct, len(rows))
	for _, p := range rows {
		existing[p.ExternalID] = p
	}
	return existing, nil
}

func (r *PGRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, r.DB.Rebind(`SELECT * FROM products WHERE external_id = ? LIMIT 1`), externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindIDsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]string, error) {
	ids := make(map[string]string, len(externalIDs))
	for _, c := range database.Chunks(len(externalIDs), database.BatchSize) {
		query, args, err := sqlx.In(`SELECT id, external_id FROM products WHERE external_id IN (?)`, externalIDs[c[0]:c[1]])
		if err != nil {
			return nil, err
		}
		query = r.DB.Rebind(query)

		var rows []model.ExistingProduct
		if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, err
		}
		for _, p := range rows {
			ids[p.ExternalID] = p.ID
		}
	}
	return ids, nil
}

func (r *PGRepository) CreateMany(ctx context.Context, products []model.Product) (int, error) {
	created := 0
	for _, c := range database.Chunks(len(products), database.BatchSize) {
		q := database.Builder(r.DB).
			Insert("products").
			Columns(
				"id", "external_id", "name", "description", "manufacturer_id", "category_id",
				"taste_profile_id", "container_type", "volume_ml", "alcohol_percent",
				"place_of_origin", "is_temporary", "image_url", "created_at", "updated_at",
			).
			Suffix("ON CONFLICT (external_id) DO NOTHING")
		for _, p := range products[c[0]:c[1]] {
			q = q.Values(
				p.ID, p.ExternalID, p.Name, p.Description, p.ManufacturerID, p.CategoryID,
				p.TasteProfileID, string(p.ContainerType), p.VolumeMl, p.AlcoholPercent,
				p.PlaceOfOrigin, p.IsTemporary, p.ImageURL, p.CreatedAt, p.UpdatedAt,
			)
		}
		query, args, err := q.ToSql()
		if err != nil {
			return created, err
		}
		res, err := r.DB.ExecContext(ctx, query, args...)
		if err != nil {
			return created, err
		}
		n, _ := res.RowsAffected()
		created += int(n)
	}
	return created, nil
}

func (r *PGRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT count(*) FROM products`)
	return n, err
}
