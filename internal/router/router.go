package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "adoptipet/docs"
	"adoptipet/internal/adapters/blob/memblob"
	"adoptipet/internal/adapters/capabilities/static"
	mem "adoptipet/internal/adapters/storage/memory"
	pg "adoptipet/internal/adapters/storage/postgres"
	"adoptipet/internal/domain/adoption"
	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/domain/dashboard"
	"adoptipet/internal/domain/media"
	"adoptipet/internal/domain/shop"
	"adoptipet/internal/domain/users"
	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/config"
	"adoptipet/internal/platform/httpx"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/auth"
	"adoptipet/internal/ports/blob"
	"adoptipet/internal/ports/capabilities"
	"adoptipet/internal/ports/notifier"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Repos agrupa la persistencia de todos los módulos.
type Repos struct {
	Users         users.Repository
	Animals       animals.Repository
	Announcements announcements.Repository
	Adoption      adoption.Store
	Shop          shop.Repository
	Dashboard     dashboard.Repository
}

// NewRepos usa Postgres si db != nil; si no, un store in-memory compartido.
func NewRepos(db *sql.DB) Repos {
	if db != nil {
		return Repos{
			Users:         pg.NewUsersRepo(db),
			Animals:       pg.NewAnimalsRepo(db),
			Announcements: pg.NewAnnouncementsRepo(db),
			Adoption:      pg.NewAdoptionStore(db),
			Shop:          pg.NewShopRepo(db),
			Dashboard:     pg.NewDashboardRepo(db),
		}
	}

	st := mem.New()
	return Repos{
		Users:         st.Users(),
		Animals:       st.Animals(),
		Announcements: st.Announcements(),
		Adoption:      st.Adoption(),
		Shop:          st.Shop(),
		Dashboard:     st.Dashboard(),
	}
}

type Options struct {
	// nil = defaults (modo dev, blob en memoria).
	Config *config.Config
	Log    logger.Logger

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Se consulta si ni el token, ni la config, ni el rol guardado dan admin.
	AdminFallback capabilities.AdminResolver

	// Opcional: si viene, /ready hace ping.
	DB *sql.DB
	// nil = NewRepos(DB).
	Repos *Repos
	// Compartido con el dispatcher de notificaciones; nil = uno nuevo.
	People *users.CachedReader

	Blob  blob.Store
	Queue notifier.Queue
}

// App expone los servicios que el proceso necesita fuera de HTTP (sweeper).
type App struct {
	Handler http.Handler

	Users         *users.Service
	Animals       *animals.Service
	Announcements *announcements.Service
	Adoption      *adoption.Service
	Shop          *shop.Service
	Dashboard     *dashboard.Service
}

func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}

	repos := NewRepos(opts.DB)
	if opts.Repos != nil {
		repos = *opts.Repos
	}

	people := opts.People
	if people == nil {
		people = users.NewCachedReader(repos.Users, cfg.Cache.UsersSize, cfg.Cache.UsersTTL)
	}
	store := opts.Blob
	if store == nil {
		store = memblob.New("")
	}
	queue := opts.Queue
	if queue == nil {
		queue = notifier.Discard{}
	}

	// Services por módulo
	usersSvc := users.NewService(repos.Users)
	animalsSvc := animals.NewService(repos.Animals, store)
	annSvc := announcements.NewService(repos.Announcements, animalsSvc, store, queue)
	adoptionSvc := adoption.NewService(repos.Adoption, repos.Announcements, repos.Animals, people, queue)
	shopSvc := shop.NewService(repos.Shop, queue)
	dashSvc := dashboard.NewService(repos.Dashboard)
	mediaSvc := media.NewService(store, cfg.Uploads.MaxBytes)
	limiter := media.NewLimiter(cfg.Uploads.RatePerSecond, cfg.Uploads.Burst)

	admins := static.NewResolver(cfg.Admin.UserIDs, usersSvc, opts.AdminFallback)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(users.SyncFromClaims(usersSvc, cfg.Cache.UsersSize, cfg.Cache.UsersTTL))
	r.Use(middleware.ResolveAdmin(admins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ready", readyHandler(opts.DB))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, people)
	animals.RegisterRoutes(r, animalsSvc)
	announcements.RegisterRoutes(r, annSvc)
	adoption.RegisterRoutes(r, adoptionSvc)
	shop.RegisterRoutes(r, shopSvc)
	dashboard.RegisterRoutes(r, dashSvc)
	media.RegisterRoutes(r, mediaSvc, limiter)

	return &App{
		Handler:       r,
		Users:         usersSvc,
		Animals:       animalsSvc,
		Announcements: annSvc,
		Adoption:      adoptionSvc,
		Shop:          shopSvc,
		Dashboard:     dashSvc,
	}
}

func readyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pg.Ping(ctx, db); err != nil {
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
