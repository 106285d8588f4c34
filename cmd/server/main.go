package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/soaringjerry/synap-reliability/internal/api"
	"github.com/soaringjerry/synap-reliability/internal/config"
	"github.com/soaringjerry/synap-reliability/internal/db"
	"github.com/soaringjerry/synap-reliability/internal/metrics"
	"github.com/soaringjerry/synap-reliability/internal/middleware"
	"github.com/soaringjerry/synap-reliability/internal/psychometrics"
	"github.com/soaringjerry/synap-reliability/internal/services"
	"github.com/soaringjerry/synap-reliability/internal/utils"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if lvl.Level() <= zap.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(cfg config.Server, logger *zap.Logger) error {
	analysisCfg, err := config.LoadAnalysis(cfg.AnalysisConfig)
	if err != nil {
		return err
	}
	analyzer, err := psychometrics.NewAnalyzer(analysisCfg, logger.Named("psychometrics"))
	if err != nil {
		return err
	}

	if cfg.SQLitePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	sqlDB, err := db.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := db.RunMigrations(sqlDB, cfg.MigrationsDir, logger); err != nil {
		return err
	}
	store, err := db.NewSQLiteStore(sqlDB, logger)
	if err != nil {
		return err
	}

	tokens, err := middleware.NewTokens(cfg.JWTSecret)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	router := api.NewRouter(api.Services{
		Auth:      services.NewAuthService(store, tokens.Sign, cfg.TokenTTL),
		Scales:    services.NewScaleService(store),
		Responses: services.NewResponseService(store, config.JudgeRatingMax(analysisCfg)),
		Analysis:  services.NewAnalysisService(store, analyzer, recorder, logger),
	}, tokens, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", router.Handler())
	mux.Handle("GET /metrics", recorder.Handler())
	mux.Handle("GET /health", middleware.LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := middleware.LocaleFromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"name":   "Synap reliability API",
			"locale": locale,
			"msg":    utils.T(locale, "health.ok"),
			"commit": cfg.Commit,
		})
	})))
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"commit": cfg.Commit, "build_time": cfg.BuildTime})
	})
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	var handler http.Handler = mux
	handler = middleware.SecureHeaders(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)
	handler = middleware.RequestLogger(logger.Named("http"))(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr), zap.String("commit", cfg.Commit))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
