package manufacturer

import (
	"context"

	"github.com/bjorheimar/catalog-sync/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.Manufacturer, error)
	// FindByNames maps each existing name to its manufacturer id.
	FindByNames(ctx context.Context, names []string) (map[string]string, error)
	// CreateMany inserts the names not yet present and returns how many rows
	// were created.
	CreateMany(ctx context.Context, names []string) (int, error)
}
