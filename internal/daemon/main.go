// Package daemon assembles the service: database, session storage, cache, access
// service and web server.
package daemon

import (
	"context"
	"io"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/cache"
	"github.com/portal-access/portal-access/internal/config"
	"github.com/portal-access/portal-access/internal/db/dsn"
	"github.com/portal-access/portal-access/internal/db/models"
	"github.com/portal-access/portal-access/internal/db/seed"
	"github.com/portal-access/portal-access/internal/logger"
	"github.com/portal-access/portal-access/internal/web"
	"github.com/portal-access/portal-access/internal/web/session"
)

const (
	memorySessionSize = 10000
	cacheConnectTime  = 10 * time.Second
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	sessions   *session.Store
	cache      cache.Cache
}

// Start serves until a shutdown signal arrives.
func (d *Daemon) Start() error {
	go func() {
		if err := d.webService.Start(d.webService.Addr()); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	d.webService.WaitShutdown()

	if err := d.sessions.Close(); err != nil {
		log.Error().Err(err).Msg("closing session storage failed")
	}

	if c, ok := d.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("closing cache failed")
		}
	}

	return nil
}

// OpenDB opens the configured database, migrates the schema and seeds an empty database.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	default:
		return nil, errors.Wrap(config.ErrUnsupportedEngine, cfg.DB.GormEngine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		sqlDB, poolErr := db.DB()
		if poolErr != nil {
			return nil, errors.Wrap(poolErr, "failed to access sqlite pool")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	if err = seed.Run(db); err != nil {
		return nil, errors.Wrap(err, "failed to seed database")
	}

	return db, nil
}

// NewSessionStorage returns the storage the identity provider writes sessions to.
// The sqlite engine keeps sessions in memory.
func NewSessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         cfg.Session.Table,
		})
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.MySQL(cfg),
			Table:         cfg.Session.Table,
		})
	default:
		return session.NewMemoryStorage(memorySessionSize, cfg.Session.ExpiryTime)
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheConnectTime)
	defer cancel()

	resolutionCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache")
	}

	authService := auth.NewService(db, resolutionCache)
	authService.SetDecisionLog(logger.NewDecisionLogger(cfg.Log), cfg.Log.Decisions.DeniedOnly)

	sessions := session.New(NewSessionStorage(cfg), cfg.Session.ExpiryTime)

	log.Info().
		Str("engine", cfg.DB.GormEngine).
		Str("cache", cfg.Cache.Backend).
		Int("port", cfg.Webserver.Port).
		Msg("daemon initialized")

	return &Daemon{
		webService: web.New(cfg, db, authService, sessions),
		sessions:   sessions,
		cache:      resolutionCache,
	}, nil
}
