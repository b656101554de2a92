package donation

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "net"
    "net/http"
    "sync"
    "time"

    "github.com/go-chi/chi/v5"
    chimw "github.com/go-chi/chi/v5/middleware"
    _ "github.com/lib/pq"
    "golang.org/x/exp/slog"

    "github.com/alovak/pix-donations/donation/models"
    "github.com/alovak/pix-donations/internal/expiry"
    "github.com/alovak/pix-donations/internal/middleware"
)

// App is the main application, it contains all the components of the donation service
// and is responsible for starting and stopping them.
type App struct {
    srv    *http.Server
    wg     *sync.WaitGroup
    Addr   string
    logger *slog.Logger
    config *Config
    repo   *Repository
}

func NewApp(logger *slog.Logger, config *Config) *App {
    logger = logger.With(slog.String("app", "donation"))

    if config == nil {
        config = DefaultConfig()
    }

    return &App{
        wg:     &sync.WaitGroup{},
        logger: logger,
        config: config,
    }
}

func (a *App) Start() error {
    a.logger.Info("starting app...")

    repository, err := a.openRepository()
    if err != nil {
        return err
    }
    a.repo = repository

    if a.config.ExpiryTZ != "" {
        if loc, err := time.LoadLocation(a.config.ExpiryTZ); err == nil {
            expiry.SetDefaultLocation(loc)
        } else {
            a.logger.Info("invalid ExpiryTZ; using default UTC", slog.String("tz", a.config.ExpiryTZ), slog.Any("err", err))
        }
    }

    svc := NewService(repository, a.config)
    if err := a.seedDefaultPage(svc); err != nil {
        a.closeRepository()
        return err
    }

    router := chi.NewRouter()
    router.Use(chimw.RequestID)
    router.Use(chimw.Recoverer)
    router.Use(middleware.NewStructuredLogger(a.logger))

    api := NewAPI(svc)
    api.AppendRoutes(router)

    // Health probes
    router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
    router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
        ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
        defer cancel()
        if err := repository.Ping(ctx); err != nil {
            http.Error(w, "db not ready", http.StatusServiceUnavailable)
            return
        }
        w.WriteHeader(http.StatusOK)
    })

    l, err := net.Listen("tcp", a.config.HTTPAddr)
    if err != nil {
        a.closeRepository()
        return fmt.Errorf("listening tcp port: %w", err)
    }

    a.Addr = l.Addr().String()

    a.srv = &http.Server{
        Handler:           router,
        ReadHeaderTimeout: 5 * time.Second,
    }

    a.wg.Add(1)
    go func() {
        defer a.wg.Done()
        a.logger.Info("http server started", slog.String("addr", a.Addr))

        if err := a.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
            a.logger.Error("starting http server", "err", err)
        }

        a.logger.Info("http server stopped")
    }()

    return nil
}

func (a *App) openRepository() (*Repository, error) {
    switch a.config.RepoBackend {
    case "", "mem":
        return NewRepository(), nil
    case "pg":
        if a.config.DBDSN == "" {
            return nil, fmt.Errorf("DB_DSN is required for pg backend")
        }
        db, err := sql.Open("postgres", a.config.DBDSN)
        if err != nil {
            return nil, fmt.Errorf("open postgres: %w", err)
        }
        db.SetMaxIdleConns(5)
        db.SetMaxOpenConns(10)
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            db.Close()
            return nil, fmt.Errorf("ping postgres: %w", err)
        }
        repo := NewPGRepository(db)
        if err := repo.EnsureSchema(ctx); err != nil {
            db.Close()
            return nil, err
        }
        return repo, nil
    default:
        return nil, fmt.Errorf("unsupported REPO_BACKEND=%s", a.config.RepoBackend)
    }
}

func (a *App) seedDefaultPage(svc *Service) error {
    seed := a.config.DefaultPage
    if seed.Slug == "" || seed.PixKey == "" {
        return nil
    }
    page, err := svc.CreatePage(context.Background(), models.CreatePage{
        Slug:            seed.Slug,
        PixKey:          seed.PixKey,
        BeneficiaryName: seed.Name,
        BeneficiaryCity: seed.City,
    })
    switch {
    case err == nil:
        a.logger.Info("default page created", slog.String("slug", page.Slug))
    case errors.Is(err, ErrConflict):
        a.logger.Info("default page already exists", slog.String("slug", seed.Slug))
    default:
        return fmt.Errorf("seeding default page: %w", err)
    }
    return nil
}

func (a *App) Shutdown() {
    a.logger.Info("shutting down app...")

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if a.srv != nil {
        if err := a.srv.Shutdown(ctx); err != nil {
            a.logger.Error("shutting down http server", "err", err)
        }
    }

    a.wg.Wait()
    a.closeRepository()

    a.logger.Info("app stopped")
}

func (a *App) closeRepository() {
    if a.repo == nil {
        return
    }
    if err := a.repo.Close(); err != nil {
        a.logger.Error("closing repository", "err", err)
    }
    a.repo = nil
}
