package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/bjorheimar/catalog-sync/config"
	"github.com/bjorheimar/catalog-sync/internal/atvr"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/trigger"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/usecase"
	catRepoPkg "github.com/bjorheimar/catalog-sync/internal/category/repository"
	invRepoPkg "github.com/bjorheimar/catalog-sync/internal/inventory/repository"
	mfrRepoPkg "github.com/bjorheimar/catalog-sync/internal/manufacturer/repository"
	"github.com/bjorheimar/catalog-sync/internal/pkg/cache"
	"github.com/bjorheimar/catalog-sync/internal/pkg/database"
	"github.com/bjorheimar/catalog-sync/internal/pkg/image"
	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"github.com/bjorheimar/catalog-sync/internal/pkg/search"
	"github.com/bjorheimar/catalog-sync/internal/product/indexer"
	prodRepoPkg "github.com/bjorheimar/catalog-sync/internal/product/repository"
	storeRepoPkg "github.com/bjorheimar/catalog-sync/internal/store/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// app is the wired service shared by every command.
type app struct {
	cfg        *config.Config
	log        logger.Logger
	db         *sqlx.DB
	redis      *cache.RedisClient
	storeRepo  *storeRepoPkg.PGRepository
	invRepo    *invRepoPkg.PGRepository
	dispatcher *trigger.Dispatcher
}

func newLogger(cfg *config.Config) logger.Logger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	return logger.NewZapLogger(logConfig)
}

func openDB(cfg *config.Config, log logger.Logger) (*sqlx.DB, error) {
	if cfg.Database.Driver == "sqlite" {
		db, err := database.NewSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		// The embedded schema is idempotent; a local file is migrated on open.
		if err := database.Migrate(context.Background(), db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Opened SQLite catalog", zap.String("path", cfg.Database.SQLitePath))
		return db, nil
	}

	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
	return db, nil
}

func syncOptions(cfg *config.Config) catalogsync.Options {
	return catalogsync.Options{
		Provisioning:   catalogsync.ProvisioningPolicy(cfg.Sync.ProvisioningPolicy),
		Archive:        catalogsync.ArchiveMode(cfg.Sync.ArchiveMode),
		Hours:          catalogsync.HoursPolicy(cfg.Sync.HoursPolicy),
		FuzzyThreshold: cfg.Sync.FuzzyThreshold,
		Fanout:         cfg.Sync.Fanout,
		ImageBaseURL:   cfg.Upstream.ImageURL,
	}
}

func newApp(cfg *config.Config) (*app, error) {
	log := newLogger(cfg)
	a := &app{cfg: cfg, log: log}

	db, err := openDB(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db

	var producers atvr.ProducerCache
	producerTTL := time.Duration(cfg.Upstream.ProducerCacheTTL) * time.Second
	if cfg.Redis.Addr != "" {
		a.redis, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		producers = atvr.NewRedisProducerCache(a.redis.Client, producerTTL)
	} else {
		log.Info("Redis not configured, using in-process producer cache and locks")
		producers = atvr.NewMemoryProducerCache(producerTTL)
	}

	timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	upstream := atvr.NewClient(atvr.Options{
		BaseURL:        cfg.Upstream.BaseURL,
		Category:       cfg.Upstream.Category,
		OrderBy:        cfg.Upstream.OrderBy,
		PageSize:       cfg.Upstream.PageSize,
		Timeout:        timeout,
		FuzzyThreshold: cfg.Sync.FuzzyThreshold,
	}, producers, log)

	a.storeRepo = storeRepoPkg.NewPGRepository(db)
	a.invRepo = invRepoPkg.NewPGRepository(db)
	deps := usecase.Dependencies{
		Upstream:      upstream,
		Manufacturers: mfrRepoPkg.NewPGRepository(db),
		Categories:    catRepoPkg.NewPGRepository(db),
		Products:      prodRepoPkg.NewPGRepository(db),
		Stores:        a.storeRepo,
		Inventory:     a.invRepo,
	}
	if cfg.Images.Dir != "" {
		deps.Images = image.NewLocalStore(&image.Config{
			Dir:       cfg.Images.Dir,
			PublicURL: cfg.Images.PublicURL,
			Timeout:   timeout,
		})
	}
	if cfg.Upstream.DetailURL != "" {
		deps.Descriptions = atvr.NewDescriptionScraper(cfg.Upstream.DetailURL, timeout)
	}

	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			// Products are still created; only indexing is skipped.
			log.Warn("Could not connect to Elasticsearch, products will not be indexed", zap.Error(err))
		} else {
			log.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
			deps.Indexer = indexer.New(esClient)
		}
	}

	uc, err := usecase.NewSyncUseCase(deps, syncOptions(cfg), log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var locker trigger.Locker
	if a.redis != nil {
		locker = a.redis
	}
	a.dispatcher = trigger.NewDispatcher(uc, locker, cfg.Sync.Stores, log)
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	a.log.Sync()
}
