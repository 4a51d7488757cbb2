package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/api/handler"
	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
	"github.com/99minutos/storefront-console/internal/core/session"
	"github.com/99minutos/storefront-console/internal/infrastructure/apiclient"
	"github.com/99minutos/storefront-console/internal/infrastructure/config"
	redisdb "github.com/99minutos/storefront-console/internal/infrastructure/db/redis"
	"github.com/99minutos/storefront-console/internal/infrastructure/tokenstore"
	"github.com/99minutos/storefront-console/pkg/logger"
)

type Globals struct {
	Debug   bool
	API     string
	Version string
	// Out receives command output; defaults to stdout.
	Out io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// Store is the per-origin persisted client state.
type Store interface {
	ports.TokenStore
	ports.PaymentLedger
}

// runtime is the wired client: one store, one API client and one session
// controller per process.
type runtime struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   Store
	client  *apiclient.Client
	session *session.Controller
	checks  map[string]handler.Checker
	closers []func() error
}

func newRuntime(ctx context.Context, globals *Globals, nav ports.Navigator) (*runtime, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if globals.API != "" {
		cfg.API.BaseURL = globals.API
	}

	level := cfg.LogLevel
	if globals.Debug {
		level = "debug"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: cfg.Development()})

	origin, err := tokenstore.Origin(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log, checks: make(map[string]handler.Checker)}
	if err := rt.openStore(ctx, origin); err != nil {
		return nil, err
	}

	rt.client, err = apiclient.New(apiclient.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		RedirectDelay: cfg.API.RedirectDelay,
		Logger:        logger.Component(log, "apiclient"),
	}, rt.store, nav)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.session = session.NewController(rt.client, rt.store, logger.Component(log, "session"))
	rt.session.BindForcedLogout(rt.client)
	return rt, nil
}

func (rt *runtime) openStore(ctx context.Context, origin string) error {
	storeLog := logger.Component(rt.log, "tokenstore")

	switch rt.cfg.Store.Backend {
	case config.StoreMemory:
		rt.store = tokenstore.NewMemoryStore()
	case config.StoreRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     rt.cfg.Redis.Addr,
			Password: rt.cfg.Redis.Password,
			DB:       rt.cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("token store: %w", err)
		}
		rt.closers = append(rt.closers, rdb.Close)
		rt.checks["redis"] = handler.RedisCheck(rdb)
		rt.store = redisdb.NewTokenStore(rdb, origin)
	default:
		fs, err := tokenstore.NewFileStore(rt.cfg.Store.Dir, origin, storeLog)
		if err != nil {
			return fmt.Errorf("token store: %w", err)
		}
		rt.store = fs
	}

	rt.checks["token_store"] = handler.CheckFunc(func(ctx context.Context) error {
		if _, err := rt.store.Read(ctx); err != nil && !errors.Is(err, domain.ErrNoCredential) {
			return err
		}
		return nil
	})
	storeLog.Debug().Str("backend", rt.cfg.Store.Backend).Str("origin", origin).Msg("token store ready")
	return nil
}

func (rt *runtime) Close() {
	for _, c := range rt.closers {
		if err := c(); err != nil {
			rt.log.Warn().Err(err).Msg("close failed")
		}
	}
}
