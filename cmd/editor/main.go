package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lintang-b-s/synthmap/pkg/config"
	"github.com/lintang-b-s/synthmap/pkg/kv"
	"github.com/lintang-b-s/synthmap/pkg/logger"
	"github.com/lintang-b-s/synthmap/pkg/server/rest"
	"github.com/lintang-b-s/synthmap/pkg/server/rest/service"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	configPath = flag.String("config", "", "TOML config file (default $SYNTHMAP_CONFIG or synthmap.toml)")
	listenAddr = flag.String("listenaddr", "", "server listen address, overrides [server] listen_addr")
	snapshot   = flag.String("f", "", "snapshot to start editing from, empty starts a blank map")
	noStore    = flag.Bool("nostore", false, "run without the raw map store")
	profiler   = flag.Bool("profiler", false, "mount pprof under /debug")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("loading config", "err", err)
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal("log level", "err", err)
	}
	lg := logger.New(os.Stderr, level)
	ctx := logger.WithContext(context.Background(), lg)

	model := synthetic.NewModel()
	if *snapshot != "" {
		model, err = synthetic.Load(*snapshot)
		if err != nil {
			lg.Fatal("loading snapshot", "err", err)
		}
		lg.Info("loaded snapshot", "path", *snapshot, "name", model.Name())
	}

	var store service.MapStore
	if !*noStore {
		if err := os.MkdirAll(cfg.Paths.KVDir, 0o755); err != nil {
			lg.Fatal("creating kv dir", "err", err)
		}
		db, err := kv.OpenDB(filepath.Clean(cfg.Paths.KVDir))
		if err != nil {
			lg.Fatal("opening kv db", "err", err)
		}
		mapStore := kv.NewMapStore(db)
		defer mapStore.Close()
		store = mapStore
	}

	editorSvc := service.NewEditorService(model, store, service.Config{
		MapsDir:      cfg.Paths.MapsDir,
		RawMapsDir:   cfg.Paths.RawMapsDir,
		Bounds:       cfg.Map.GPSBounds(),
		SpatialIndex: cfg.Server.SpatialIndex,
	})

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(logger.WithContext(req.Context(), lg)))
		})
	})

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if *profiler {
		r.Mount("/debug", middleware.Profiler())
	}

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.EditorRouter(r, editorSvc, m)

	addr := cfg.Server.ListenAddr
	if *listenAddr != "" {
		addr = *listenAddr
	}
	srv := &http.Server{Addr: addr, Handler: r}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error("shutdown", "err", err)
		}
	}()

	lg.Info("editor server started", "addr", addr, "spatial_index", cfg.Server.SpatialIndex)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Error("server stopped", "err", err)
	}
}
