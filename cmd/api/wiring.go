package main

import (
	"context"
	"database/sql"
	"fmt"

	"adoptipet/internal/adapters/auth/jwtauth"
	authremote "adoptipet/internal/adapters/auth/remote"
	"adoptipet/internal/adapters/blob/memblob"
	"adoptipet/internal/adapters/blob/s3store"
	capremote "adoptipet/internal/adapters/capabilities/remote"
	"adoptipet/internal/adapters/notify"
	"adoptipet/internal/adapters/notify/natsnotify"
	"adoptipet/internal/adapters/notify/smtpnotify"
	pg "adoptipet/internal/adapters/storage/postgres"
	"adoptipet/internal/platform/config"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/auth"
	"adoptipet/internal/ports/blob"
	"adoptipet/internal/ports/capabilities"
	"adoptipet/internal/ports/notifier"
)

// openDatabase devuelve nil sin DSN: la API corre en memoria.
func openDatabase(cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	if cfg.DB.DSN == "" {
		log.Warn("db.dsn not set, using in-memory storage", nil)
		return nil, nil
	}
	if cfg.DB.MigrateOnStart {
		v, err := pg.Migrate(cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		log.Info("migrations applied", map[string]any{"version": v})
	}
	db, err := pg.Open(cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// buildVerifier: nil en modo dev (headers X-Debug-*).
func buildVerifier(ctx context.Context, cfg *config.Config) (auth.AuthVerifier, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		v, err := jwtauth.New(ctx, jwtauth.Config{
			Secret:  cfg.Auth.JWTSecret,
			JWKSURL: cfg.Auth.JWKSURL,
			Issuer:  cfg.Auth.Issuer,
			Leeway:  cfg.Auth.Leeway,
		})
		if err != nil {
			return nil, fmt.Errorf("jwt verifier: %w", err)
		}
		return v, nil
	case config.AuthModeRemote:
		v, err := authremote.NewVerifier(authremote.Config{
			BaseURL: cfg.Auth.RemoteURL,
			APIKey:  cfg.Auth.RemoteAPIKey,
			Timeout: cfg.Auth.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("remote verifier: %w", err)
		}
		return v, nil
	default:
		return nil, nil
	}
}

func buildAdminFallback(cfg *config.Config) (capabilities.AdminResolver, error) {
	if cfg.Admin.CapabilitiesURL == "" {
		return nil, nil
	}
	client, err := capremote.NewClient(capremote.Config{
		BaseURL: cfg.Admin.CapabilitiesURL,
		APIKey:  cfg.Admin.CapabilitiesAPIKey,
		Timeout: cfg.Auth.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("capabilities client: %w", err)
	}
	return capremote.NewResolver(client, cfg.Cache.UsersSize, cfg.Cache.UsersTTL), nil
}

func buildBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	if cfg.Blob.Driver != "s3" {
		return memblob.New(cfg.Blob.PublicBaseURL), nil
	}
	st, err := s3store.New(ctx, s3store.Config{
		Bucket:          cfg.Blob.Bucket,
		Region:          cfg.Blob.Region,
		Endpoint:        cfg.Blob.Endpoint,
		PathStyle:       cfg.Blob.UsePathStyle,
		AccessKeyID:     cfg.Blob.AccessKeyID,
		SecretAccessKey: cfg.Blob.SecretAccessKey,
		PublicBaseURL:   cfg.Blob.PublicBaseURL,
		PresignTTL:      cfg.Blob.PresignTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 store: %w", err)
	}
	return st, nil
}

// buildNotifier devuelve el sink y su cierre (no-op salvo NATS).
func buildNotifier(cfg *config.Config, log logger.Logger) (notifier.Notifier, func(), error) {
	noop := func() {}
	switch cfg.Notify.Driver {
	case "smtp":
		n, err := smtpnotify.New(smtpnotify.Config{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			User:     cfg.Notify.SMTPUser,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.From,
		})
		if err != nil {
			return nil, noop, err
		}
		return n, noop, nil
	case "nats":
		nc, err := natsnotify.Connect(cfg.Notify.NATSURL, "adoptipet")
		if err != nil {
			return nil, noop, err
		}
		n, err := natsnotify.New(nc, cfg.Notify.NATSSubject)
		if err != nil {
			nc.Close()
			return nil, noop, err
		}
		return n, func() { _ = nc.Drain() }, nil
	default:
		return notify.NewLogNotifier(log), noop, nil
	}
}
