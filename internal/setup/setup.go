package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/foro/internal/app"
	"github.com/itchan-dev/foro/internal/handler"
	"github.com/itchan-dev/foro/internal/markdown"
	"github.com/itchan-dev/foro/internal/service"
	"github.com/itchan-dev/foro/internal/store"
	"github.com/itchan-dev/foro/internal/utils"
	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/kv"
	"github.com/itchan-dev/foro/shared/kv/fs"
	"github.com/itchan-dev/foro/shared/kv/memory"
	"github.com/itchan-dev/foro/shared/kv/pg"
	"github.com/itchan-dev/foro/shared/kv/redis"
	"github.com/itchan-dev/foro/shared/kv/sqlite"
)

const (
	DriverMemory   = "memory"
	DriverFS       = "fs"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSqlite   = "sqlite"
)

// Dependencies holds everything the server needs.
type Dependencies struct {
	KV      kv.Store
	Store   *store.Store
	Forum   *app.Forum
	Handler *handler.Handler
}

// OpenKV connects the configured backend, with metrics and the optional key prefix
// applied.
func OpenKV(ctx context.Context, cfg config.Storage) (kv.Store, error) {
	var (
		backend kv.Store
		err     error
	)
	switch cfg.Driver {
	case DriverMemory, "":
		backend = memory.New()
	case DriverFS:
		backend, err = fs.New(cfg.Dir)
	case DriverPostgres:
		backend, err = pg.New(cfg.Pg)
	case DriverRedis:
		backend, err = redis.New(ctx, cfg.Redis)
	case DriverSqlite:
		backend, err = sqlite.New(cfg.Sqlite.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Driver, err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}
	return kv.WithPrefix(kv.Instrument(backend, driver), cfg.KeyPrefix), nil
}

// LoadStore opens the configured backend and loads the forum state from it.
func LoadStore(ctx context.Context, cfg *config.Config) (kv.Store, *store.Store, error) {
	backend, err := OpenKV(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(backend, cfg.Keys, cfg.Storage.OpTimeout)
	st.Load()
	return backend, st, nil
}

// NewForum builds the services over st with the production id generator and clock.
func NewForum(st *store.Store, cfg *config.Config) *app.Forum {
	auth := service.NewAuth(st, utils.NewBcryptHasher(cfg.Auth.BcryptCost), utils.UsernameValidator{}, utils.NewId)
	forum := service.NewForum(st, utils.NewTopicValidator(cfg.Forum), utils.NewId, time.Now)
	return app.New(st, auth, forum)
}

func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	backend, st, err := LoadStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	templates, err := handler.LoadTemplates()
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("load templates: %w", err)
	}

	forum := NewForum(st, cfg)
	h := handler.New(templates, forum, markdown.New(), cfg)

	return &Dependencies{
		KV:      backend,
		Store:   st,
		Forum:   forum,
		Handler: h,
	}, nil
}

func (d *Dependencies) Close() error {
	return d.KV.Close()
}
