// Package trigger serializes sync runs started from the CLI, the HTTP API
// and the broker so two runs never write the same store or the catalog at
// once.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/auth"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusy         = errors.New("a conflicting sync is already running")
	ErrMissingStore = errors.New("inventory sync needs a store id")
)

const (
	lockPrefix     = "catalog-sync:lock:"
	defaultLockTTL = 30 * time.Minute
)

// Locker is a distributed mutex. cache.RedisClient implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type Request struct {
	Scope           catalogsync.Scope `json:"scope"`
	StoreExternalID string            `json:"store_id,omitempty"`
}

type Dispatcher struct {
	uc     catalogsync.UseCase
	locker Locker
	stores []string
	ttl    time.Duration
	logger logger.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewDispatcher returns a dispatcher over uc. stores is the list used by the
// "all" scope. locker may be nil, in which case runs are only serialized
// within this process.
func NewDispatcher(uc catalogsync.UseCase, locker Locker, stores []string, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		uc:      uc,
		locker:  locker,
		stores:  stores,
		ttl:     defaultLockTTL,
		logger:  log,
		running: map[string]bool{},
	}
}

// Stores returns the store ids the "all" scope syncs.
func (d *Dispatcher) Stores() []string {
	return append([]string(nil), d.stores...)
}

// lockKeys lists the resources a request writes. Catalog scopes share one
// key, inventory takes its store, and "all" takes everything.
func (d *Dispatcher) lockKeys(req Request) []string {
	switch req.Scope {
	case catalogsync.ScopeInventory:
		return []string{"store:" + req.StoreExternalID}
	case catalogsync.ScopeAll:
		keys := []string{"catalog"}
		for _, s := range d.stores {
			keys = append(keys, "store:"+s)
		}
		return keys
	}
	return []string{"catalog"}
}

// Run executes req unless a conflicting run holds one of its locks, in which
// case it returns ErrBusy without doing anything.
func (d *Dispatcher) Run(ctx context.Context, req Request) (*dto.SyncSummary, error) {
	if _, err := catalogsync.ParseScope(string(req.Scope)); err != nil {
		return nil, err
	}
	if req.Scope == catalogsync.ScopeInventory && req.StoreExternalID == "" {
		return nil, ErrMissingStore
	}

	keys := d.lockKeys(req)
	release, err := d.acquire(ctx, keys)
	if err != nil {
		return nil, err
	}
	defer release()

	log := d.logger.With(
		zap.String("scope", string(req.Scope)),
		zap.String("store", req.StoreExternalID),
		zap.String("requested_by", auth.Subject(ctx)),
	)
	log.Info("sync started")
	summary, err := d.execute(ctx, req)
	if err != nil {
		log.Error("sync failed", zap.Error(err))
		return nil, err
	}
	return summary, nil
}

func (d *Dispatcher) execute(ctx context.Context, req Request) (*dto.SyncSummary, error) {
	switch req.Scope {
	case catalogsync.ScopeStores:
		return d.uc.SyncStores(ctx)
	case catalogsync.ScopeManufacturers:
		return d.uc.SyncManufacturers(ctx)
	case catalogsync.ScopeCategories:
		return d.uc.SyncCategories(ctx)
	case catalogsync.ScopeProducts:
		return d.uc.SyncProducts(ctx)
	case catalogsync.ScopeCatalog:
		return d.uc.SyncCatalog(ctx)
	case catalogsync.ScopeInventory:
		return d.uc.SyncStoreInventory(ctx, req.StoreExternalID)
	case catalogsync.ScopeAll:
		return d.uc.SyncAll(ctx, d.stores)
	}
	return nil, fmt.Errorf("unknown sync scope %q", req.Scope)
}

func (d *Dispatcher) acquire(ctx context.Context, keys []string) (func(), error) {
	d.mu.Lock()
	for _, k := range keys {
		if d.running[k] {
			d.mu.Unlock()
			return nil, ErrBusy
		}
	}
	for _, k := range keys {
		d.running[k] = true
	}
	d.mu.Unlock()

	local := func() {
		d.mu.Lock()
		for _, k := range keys {
			delete(d.running, k)
		}
		d.mu.Unlock()
	}
	if d.locker == nil {
		return local, nil
	}

	token := uuid.New().String()
	var held []string
	releaseRemote := func() {
		// The run's ctx may already be cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, k := range held {
			if err := d.locker.ReleaseLock(rctx, lockPrefix+k, token); err != nil {
				d.logger.Warn("failed to release sync lock", zap.String("key", k), zap.Error(err))
			}
		}
	}

	for _, k := range keys {
		ok, err := d.locker.AcquireLock(ctx, lockPrefix+k, token, d.ttl)
		if err != nil {
			releaseRemote()
			local()
			return nil, fmt.Errorf("acquire sync lock %s: %w", k, err)
		}
		if !ok {
			releaseRemote()
			local()
			return nil, ErrBusy
		}
		held = append(held, k)
	}

	return func() {
		releaseRemote()
		local()
	}, nil
}
