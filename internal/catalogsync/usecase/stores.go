package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/bjorheimar/catalog-sync/internal/store"
	"github.com/bjorheimar/catalog-sync/internal/textutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (uc *syncUseCase) SyncStores(ctx context.Context) (*dto.SyncSummary, error) {
	summary := uc.begin(catalogsync.ScopeStores, "")

	stores, err := uc.Upstream.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(stores)

	now := uc.now()
	for i := range stores {
		s := &stores[i]
		if s.PostCode == "" {
			uc.logger.Warn("store without id skipped", zap.String("name", s.Name))
			summary.StoresSkipped++
			continue
		}

		hours, err := store.ParseStoreHours(s, now)
		if err != nil {
			var hoursErr *store.HoursParseError
			if errors.As(err, &hoursErr) && uc.opts.Hours == catalogsync.HoursSkipStore {
				uc.logger.Warn("store hours unparseable, store skipped", zap.String("store", s.PostCode), zap.Error(err))
				summary.StoresSkipped++
				continue
			}
			return nil, err
		}

		saved, err := uc.Stores.Upsert(ctx, &model.Store{
			BaseModel:  model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
			ExternalID: s.PostCode,
			Name:       s.Name,
			Slug:       textutil.Slugify(s.Name),
		})
		if err != nil {
			return nil, fmt.Errorf("upsert store %s: %w", s.PostCode, err)
		}
		if err := uc.Stores.ReplaceHours(ctx, saved.ID, hours); err != nil {
			return nil, fmt.Errorf("store %s hours: %w", s.PostCode, err)
		}
		summary.StoresSynced++
	}
	return uc.finish(summary), nil
}
