package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"adoptipet/internal/adapters/notify"
	"adoptipet/internal/domain/reminders"
	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/config"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"
	"adoptipet/internal/router"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Corre una pasada de recordatorios y sale",
	Long: `Encola los recordatorios de anuncios pendientes y de cuidados, espera a
que se entreguen y termina. Pensado para un cron externo cuando
reminders.enabled=false en la API.`,
	RunE: runSweep,
}

func newSweeper(cfg *config.Config, app *router.App, queue notifier.Queue, log logger.Logger) *reminders.Sweeper {
	return reminders.NewSweeper(app.Announcements, app.Animals, app.Users, queue, log.With(map[string]any{"component": "reminders"}), reminders.Options{
		StaleAfter:  cfg.Reminders.StaleAfter,
		Lead:        cfg.Reminders.Lead,
		ExtraAdmins: cfg.Admin.UserIDs,
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
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
	sink, closeSink, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	repos := router.NewRepos(db)
	people := users.NewCachedReader(repos.Users, cfg.Cache.UsersSize, cfg.Cache.UsersTTL)
	dispatcher := notify.NewDispatcher(sink, people, log, cfg.Notify.QueueSize)
	dispatcher.Start(ctx)

	app := router.New(router.Options{Config: cfg, Log: log, DB: db, Repos: &repos, People: people, Queue: dispatcher})

	err = newSweeper(cfg, app, dispatcher, log).Run(ctx, time.Now())
	// Stop drena la cola antes de salir.
	dispatcher.Stop()
	return err
}
