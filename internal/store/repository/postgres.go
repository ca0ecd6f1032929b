package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
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

func (r *PGRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Store, error) {
	var s model.Store
	err := r.DB.GetContext(ctx, &s, r.DB.Rebind(`SELECT * FROM stores WHERE external_id = ? LIMIT 1`), externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.DB.SelectContext(ctx, &stores, `SELECT * FROM stores ORDER BY external_id`)
	return stores, err
}

func (r *PGRepository) Upsert(ctx context.Context, s *model.Store) (*model.Store, error) {
	query := `
        INSERT INTO stores (id, external_id, name, slug, created_at, updated_at)
        VALUES (:id, :external_id, :name, :slug, :created_at, :updated_at)
        ON CONFLICT (external_id) DO UPDATE
        SET name = excluded.name, slug = excluded.slug, updated_at = excluded.updated_at
    `
	if _, err := r.DB.NamedExecContext(ctx, query, s); err != nil {
		return nil, err
	}
	return r.FindByExternalID(ctx, s.ExternalID)
}

func (r *PGRepository) ReplaceHours(ctx context.Context, storeID string, hours []model.OpeningHours) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sb := database.Builder(r.DB)
	now := time.Now().UTC()
	weekdays := make([]int, 0, len(hours))
	for _, h := range hours {
		query, args, err := sb.Insert("store_hours").
			Columns("store_id", "weekday", "opens_at_minutes", "closes_at_minutes", "updated_at").
			Values(storeID, h.Weekday, h.OpensAtMinutes, h.ClosesAtMinutes, now).
			Suffix(`ON CONFLICT (store_id, weekday) DO UPDATE
				SET opens_at_minutes = excluded.opens_at_minutes,
					closes_at_minutes = excluded.closes_at_minutes,
					updated_at = excluded.updated_at`).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		weekdays = append(weekdays, h.Weekday)
	}

	del := sb.Delete("store_hours").Where(sq.Eq{"store_id": storeID})
	if len(weekdays) > 0 {
		del = del.Where(sq.NotEq{"weekday": weekdays})
	}
	query, args, err := del.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) FindHours(ctx context.Context, storeID string) ([]model.OpeningHours, error) {
	var hours []model.OpeningHours
	err := r.DB.SelectContext(ctx, &hours,
		r.DB.Rebind(`SELECT * FROM store_hours WHERE store_id = ? ORDER BY weekday`), storeID)
	return hours, err
}
