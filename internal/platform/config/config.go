// Package config carga la configuración del servicio.
//
// Precedencia (mayor a menor):
//  1. Variables de entorno ADOPTIPET_* (ADOPTIPET_AUTH_JWT_SECRET -> auth.jwt_secret)
//  2. Archivo YAML opcional (--config)
//  3. Defaults
//
// DB_DSN y PORT se siguen respetando para no romper los scripts de dev.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix         = "ADOPTIPET_"
	maxConfigFileSize = 1 << 20
)

const (
	AuthModeDev    = "dev"
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"
)

type Config struct {
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	DB        DBConfig        `koanf:"db"`
	Auth      AuthConfig      `koanf:"auth"`
	Admin     AdminConfig     `koanf:"admin"`
	Blob      BlobConfig      `koanf:"blob"`
	Notify    NotifyConfig    `koanf:"notify"`
	Reminders RemindersConfig `koanf:"reminders"`
	Uploads   UploadsConfig   `koanf:"uploads"`
	Cache     CacheConfig     `koanf:"cache"`
}

type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type DBConfig struct {
	DSN            string `koanf:"dsn"`
	MigrateOnStart bool   `koanf:"migrate_on_start"`
}

type AuthConfig struct {
	// dev | jwt | remote
	Mode string `koanf:"mode"`

	// jwt: HS256 con secreto compartido o RS256 vía JWKS.
	JWTSecret string        `koanf:"jwt_secret"`
	JWKSURL   string        `koanf:"jwks_url"`
	Issuer    string        `koanf:"issuer"`
	Leeway    time.Duration `koanf:"leeway"`

	// remote: IAM externo que verifica el token.
	RemoteURL    string        `koanf:"remote_url"`
	RemoteAPIKey string        `koanf:"remote_api_key"`
	Timeout      time.Duration `koanf:"timeout"`
}

type AdminConfig struct {
	UserIDs []string `koanf:"user_ids"`

	// Servicio de capabilities opcional (admin:access).
	CapabilitiesURL    string `koanf:"capabilities_url"`
	CapabilitiesAPIKey string `koanf:"capabilities_api_key"`
}

type BlobConfig struct {
	// memory | s3
	Driver        string `koanf:"driver"`
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	Endpoint      string `koanf:"endpoint"`
	UsePathStyle  bool   `koanf:"use_path_style"`
	PublicBaseURL string `koanf:"public_base_url"`

	// Vacíos = cadena de credenciales por defecto de AWS.
	AccessKeyID     string        `koanf:"access_key_id"`
	SecretAccessKey string        `koanf:"secret_access_key"`
	PresignTTL      time.Duration `koanf:"presign_ttl"`
}

type NotifyConfig struct {
	// log | smtp | nats
	Driver    string `koanf:"driver"`
	QueueSize int    `koanf:"queue_size"`

	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUser     string `koanf:"smtp_user"`
	SMTPPassword string `koanf:"smtp_password"`
	From         string `koanf:"from"`

	NATSURL     string `koanf:"nats_url"`
	NATSSubject string `koanf:"nats_subject"`
}

type RemindersConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Interval   time.Duration `koanf:"interval"`
	StaleAfter time.Duration `koanf:"stale_after"`
	Lead       time.Duration `koanf:"lead"`
}

type UploadsConfig struct {
	MaxBytes      int64   `koanf:"max_bytes"`
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
}

type CacheConfig struct {
	UsersSize int           `koanf:"users_size"`
	UsersTTL  time.Duration `koanf:"users_ttl"`
}

// Load lee YAML (si path != "") y luego env. Nunca falla por archivo ausente
// cuando path viene vacío.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if strings.TrimSpace(path) != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// ADOPTIPET_NOTIFY_SMTP_HOST -> notify.smtp_host
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyLegacyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	return content, nil
}

func applyLegacyEnv(cfg *Config) {
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = strings.TrimSpace(os.Getenv("DB_DSN"))
	}
	if cfg.HTTP.Addr == "" {
		if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
			cfg.HTTP.Addr = ":" + p
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 5 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 10 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = AuthModeDev
	}
	if cfg.Auth.Leeway == 0 {
		cfg.Auth.Leeway = 30 * time.Second
	}
	if cfg.Auth.Timeout == 0 {
		cfg.Auth.Timeout = 5 * time.Second
	}

	if cfg.Blob.Driver == "" {
		cfg.Blob.Driver = "memory"
	}
	if cfg.Blob.PresignTTL == 0 {
		cfg.Blob.PresignTTL = 15 * time.Minute
	}

	if cfg.Notify.Driver == "" {
		cfg.Notify.Driver = "log"
	}
	if cfg.Notify.QueueSize <= 0 {
		cfg.Notify.QueueSize = 256
	}
	if cfg.Notify.SMTPPort == 0 {
		cfg.Notify.SMTPPort = 587
	}
	if cfg.Notify.From == "" {
		cfg.Notify.From = "no-reply@adoptipet.local"
	}
	if cfg.Notify.NATSSubject == "" {
		cfg.Notify.NATSSubject = "adoptipet.notifications"
	}

	if cfg.Reminders.Interval == 0 {
		cfg.Reminders.Interval = 24 * time.Hour
	}
	if cfg.Reminders.StaleAfter == 0 {
		cfg.Reminders.StaleAfter = 72 * time.Hour
	}
	if cfg.Reminders.Lead == 0 {
		cfg.Reminders.Lead = 7 * 24 * time.Hour
	}

	if cfg.Uploads.MaxBytes <= 0 {
		cfg.Uploads.MaxBytes = 5 << 20
	}
	if cfg.Uploads.RatePerSecond <= 0 {
		cfg.Uploads.RatePerSecond = 1
	}
	if cfg.Uploads.Burst <= 0 {
		cfg.Uploads.Burst = 10
	}

	if cfg.Cache.UsersSize <= 0 {
		cfg.Cache.UsersSize = 1024
	}
	if cfg.Cache.UsersTTL == 0 {
		cfg.Cache.UsersTTL = 5 * time.Minute
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Auth.Mode {
	case AuthModeDev:
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
			errs = append(errs, errors.New("auth.mode=jwt requires auth.jwt_secret or auth.jwks_url"))
		}
	case AuthModeRemote:
		if c.Auth.RemoteURL == "" {
			errs = append(errs, errors.New("auth.mode=remote requires auth.remote_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.mode %q", c.Auth.Mode))
	}

	switch c.Blob.Driver {
	case "memory":
	case "s3":
		if c.Blob.Bucket == "" {
			errs = append(errs, errors.New("blob.driver=s3 requires blob.bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob.driver %q", c.Blob.Driver))
	}

	switch c.Notify.Driver {
	case "log":
	case "smtp":
		if c.Notify.SMTPHost == "" {
			errs = append(errs, errors.New("notify.driver=smtp requires notify.smtp_host"))
		}
	case "nats":
		if c.Notify.NATSURL == "" {
			errs = append(errs, errors.New("notify.driver=nats requires notify.nats_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown notify.driver %q", c.Notify.Driver))
	}

	return errors.Join(errs...)
}

// IsAdminUser indica si userID está en admin.user_ids.
func (c *Config) IsAdminUser(userID string) bool {
	for _, id := range c.Admin.UserIDs {
		if strings.TrimSpace(id) == userID {
			return true
		}
	}
	return false
}
