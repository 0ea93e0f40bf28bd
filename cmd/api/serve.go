package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"adoptipet/internal/adapters/notify"
	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/scheduler"
	"adoptipet/internal/router"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta la API HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		return err
	}
	fallback, err := buildAdminFallback(cfg)
	if err != nil {
		return err
	}
	store, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	sink, closeSink, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	repos := router.NewRepos(db)
	people := users.NewCachedReader(repos.Users, cfg.Cache.UsersSize, cfg.Cache.UsersTTL)

	dispatcher := notify.NewDispatcher(sink, people, log, cfg.Notify.QueueSize)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	app := router.New(router.Options{
		Config:        cfg,
		Log:           log,
		AuthVerifier:  verifier,
		AdminFallback: fallback,
		DB:            db,
		Repos:         &repos,
		People:        people,
		Blob:          store,
		Queue:         dispatcher,
	})

	sched := scheduler.New(log)
	if cfg.Reminders.Enabled {
		sweeper := newSweeper(cfg, app, dispatcher, log)
		if err := sched.Register("reminders", cfg.Reminders.Interval, sweeper.Run); err != nil {
			return fmt.Errorf("register reminders: %w", err)
		}
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":      cfg.HTTP.Addr,
			"auth_mode": cfg.Auth.Mode,
			"blob":      cfg.Blob.Driver,
			"notify":    cfg.Notify.Driver,
			"postgres":  db != nil,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
