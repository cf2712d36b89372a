package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/relware/sitegen/internal/adapter/mdadapter"
	"github.com/relware/sitegen/internal/adapter/snapshot"
	"github.com/relware/sitegen/internal/config"
	httphandler "github.com/relware/sitegen/internal/handler/http"
	countrepo "github.com/relware/sitegen/internal/repository/counter"
	srvcounter "github.com/relware/sitegen/internal/service/counter"
	"github.com/relware/sitegen/internal/service/meta"
	"github.com/relware/sitegen/internal/service/site"
	"github.com/spf13/afero"
)

const (
	shutdownTimeout = 5 * time.Second
)

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

// Start loads the config, runs the first build and, when asked to,
// serves the output tree.
func (a *App) Start(serve bool) {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, lo))

	if err := a.Build(); err != nil {
		a.log.Error("Build failed", slog.Any("error", err))
		os.Exit(1)
	}

	if !serve {
		return
	}

	fs := afero.NewOsFs()

	var counterSrv httphandler.CounterService
	if a.cfg.RedisURL != "" {
		opt, err := redis.ParseURL(a.cfg.RedisURL)
		if err != nil {
			panic(err)
		}

		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			panic(err)
		}

		counterSrv = srvcounter.NewCounterService(countrepo.NewCounterRepository(rdb, a.log), a.log)
		http.Handle("GET /stat/{$}", httphandler.NewStatHandler(counterSrv, a.log))
	}

	http.Handle("/", httphandler.NewSiteHandler(fs, a.cfg.Site.OutDir, counterSrv, a.log))

	a.srv = &http.Server{
		Addr: a.cfg.Listen,
	}

	go func() {
		a.log.Info("Start listen", slog.String("addr", a.cfg.Listen))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

// Build runs one full site generation: resolve the download catalog
// first, then write every page against the resulting GlobalMeta.
// Fail-fast, nothing partial is published.
func (a *App) Build() error {
	log := a.log.With(slog.String("build_id", uuid.NewString()))
	started := time.Now()

	fs := afero.NewOsFs()

	builder := meta.NewBuilder(snapshot.NewLoader(fs, log), &a.cfg.Meta, log)
	globalMeta, err := builder.Build(a.cfg.Production)
	if err != nil {
		return err
	}

	gen, err := site.NewGenerator(fs, &a.cfg.Site, mdadapter.New(fs, log), globalMeta, log)
	if err != nil {
		return err
	}

	if err := gen.Generate(); err != nil {
		return err
	}

	log.Info("Build done",
		slog.String("app_version", globalMeta.AppVersion),
		slog.Duration("elapsed", time.Since(started)))

	return nil
}

func (a *App) Stop() {
	if a.srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.srv.Shutdown(ctx)
}
