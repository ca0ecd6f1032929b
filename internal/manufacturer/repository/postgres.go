package repository

import (
	"context"
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

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Manufacturer, error) {
	var items []model.Manufacturer
	err := r.DB.SelectContext(ctx, &items, `SELECT * FROM manufacturers ORDER BY created_at, name`)
	return items, err
}

func (r *PGRepository) FindByNames(ctx context.Context, names []string) (map[string]string, error) {
	ids := make(map[string]string, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	query, args, err := sqlx.In(`SELECT id, name FROM manufacturers WHERE name IN (?)`, names)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var rows []model.Manufacturer
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, m := range rows {
		ids[m.Name] = m.ID
	}
	return ids, nil
}

func (r *PGRepository) CreateMany(ctx context.Context, names []string) (int, error) {
	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" && !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	now := time.Now().UTC()
	created := 0
	for _, c := range database.Chunks(len(unique), database.BatchSize) {
		q := database.Builder(r.DB).
			Insert("manufacturers").
			Columns("id", "name", "created_at", "updated_at").
			Suffix("ON CONFLICT (name) DO NOTHING")
		for _, name := range unique[c[0]:c[1]] {
			q = q.Values(uuid.NewString(), name, now, now)
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
