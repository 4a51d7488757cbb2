package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/99minutos/storefront-console/internal/api"
	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/infrastructure/navigation"
	"github.com/99minutos/storefront-console/pkg/logger"
)

type ServeCmd struct {
	Addr string `help:"Listen address (overrides CONSOLE_ADDR)." default:""`
}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	nav := navigation.NewHistory()
	rt, err := newRuntime(ctx, globals, nav)
	if err != nil {
		return err
	}
	defer rt.Close()

	addr := s.Addr
	if addr == "" {
		addr = rt.cfg.Console.Addr
	}
	log := logger.Component(rt.log, "console")

	cancel := rt.session.Subscribe(func(snap domain.Session) {
		ev := log.Info().Stringer("state", snap.State())
		if snap.CurrentUser != nil {
			ev = ev.Str("username", snap.CurrentUser.Username)
		}
		ev.Msg("session changed")
	})
	defer cancel()

	// Pages answer with a loading placeholder until the credential check ends.
	go rt.session.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		Sessions:  rt.session,
		Backend:   rt.client,
		Ledger:    rt.store,
		Navigator: nav,
		Checks:    rt.checks,
		Logger:    logger.Component(rt.log, "http"),
	})
	srv := configureHTTPServer(addr, e)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("version", globals.Version).
			Str("addr", addr).
			Str("api", rt.client.BaseURL()).
			Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
