package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/bjorheimar/catalog-sync/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.ProductCategory, error) {
	var categories []model.ProductCategory
	if err := r.DB.SelectContext(ctx, &categories, `SELECT * FROM product_categories ORDER BY external_code`); err != nil {
		return nil, err
	}

	var profiles []model.TasteProfile
	if err := r.DB.SelectContext(ctx, &profiles, `SELECT * FROM taste_profiles ORDER BY external_code`); err != nil {
		return nil, err
	}

	// Build map for O(n) attach
	byID := make(map[string]int, len(categories))
	for i := range categories {
		byID[categories[i].ID] = i
	}
	for _, p := range profiles {
		if i, ok := byID[p.CategoryID]; ok {
			categories[i].TasteProfiles = append(categories[i].TasteProfiles, p)
		}
	}
	return categories, nil
}

func (r *PGRepository) FindByExternalCode(ctx context.Context, code string) (*model.ProductCategory, error) {
	var c model.ProductCategory
	err := r.DB.GetContext(ctx, &c, r.DB.Rebind(`SELECT * FROM product_categories WHERE external_code = ? LIMIT 1`), code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &c.TasteProfiles,
		r.DB.Rebind(`SELECT * FROM taste_profiles WHERE category_id = ? ORDER BY external_code`), c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) CreateCategories(ctx context.Context, categories []model.ProductCategory) (int, error) {
	created := 0
	for _, c := range database.Chunks(len(categories), database.BatchSize) {
		q := database.Builder(r.DB).
			Insert("product_categories").
			Columns("id", "external_code", "name", "description", "created_at", "updated_at").
			Suffix("ON CONFLICT (external_code) DO NOTHING")
		for _, cat := range categories[c[0]:c[1]] {
			q = q.Values(cat.ID, cat.ExternalCode, cat.Name, cat.Description, cat.CreatedAt, cat.UpdatedAt)
		}
		n, err := execInsert(ctx, r.DB, q.ToSql)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (r *PGRepository) CreateProfiles(ctx context.Context, profiles []model.TasteProfile) (int, error) {
	created := 0
	for _, c := range database.Chunks(len(profiles), database.BatchSize) {
		q := database.Builder(r.DB).
			Insert("taste_profiles").
			Columns("id", "external_code", "name", "description", "category_id", "created_at", "updated_at").
			Suffix("ON CONFLICT (external_code) DO NOTHING")
		for _, p := range profiles[c[0]:c[1]] {
			q = q.Values(p.ID, p.ExternalCode, p.Name, p.Description, p.CategoryID, p.CreatedAt, p.UpdatedAt)
		}
		n, err := execInsert(ctx, r.DB, q.ToSql)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (r *PGRepository) UpsertTaxonomy(ctx context.Context, categories []model.ProductCategory) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sb := database.Builder(r.DB)
	now := time.Now().UTC()
	for _, cat := range categories {
		query, args, err := sb.Insert("product_categories").
			Columns("id", "external_code", "name", "description", "created_at", "updated_at").
			Values(uuid.NewString(), cat.ExternalCode, cat.Name, cat.Description, now, now).
			Suffix(`ON CONFLICT (external_code) DO UPDATE
				SET name = excluded.name, description = excluded.description, updated_at = excluded.updated_at
				WHERE product_categories.name = ?`, model.UnknownCategoryName).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert category %s: %w", cat.ExternalCode, err)
		}

		var categoryID string
		if err := tx.GetContext(ctx, &categoryID,
			tx.Rebind(`SELECT id FROM product_categories WHERE external_code = ?`), cat.ExternalCode); err != nil {
			return err
		}

		for _, p := range cat.TasteProfiles {
			query, args, err := sb.Insert("taste_profiles").
				Columns("id", "external_code", "name", "description", "category_id", "created_at", "updated_at").
				Values(uuid.NewString(), p.ExternalCode, p.Name, p.Description, categoryID, now, now).
				Suffix(`ON CONFLICT (external_code) DO UPDATE
					SET name = excluded.name, description = excluded.description,
						category_id = excluded.category_id, updated_at = excluded.updated_at
					WHERE taste_profiles.name = ?`, model.UnknownTasteProfileName).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert taste profile %s: %w", p.ExternalCode, err)
			}
		}
	}

	return tx.Commit()
}

func execInsert(ctx context.Context, db *sqlx.DB, build func() (string, []interface{}, error)) (int, error) {
	query, args, err := build()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
