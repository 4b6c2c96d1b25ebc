package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hakimbenali/mizan-backend/internal/config"
	"github.com/hakimbenali/mizan-backend/internal/logger"
	"github.com/hakimbenali/mizan-backend/internal/modules/auth"
	"github.com/hakimbenali/mizan-backend/internal/modules/expense"
	"github.com/hakimbenali/mizan-backend/internal/modules/mirror"
	"github.com/hakimbenali/mizan-backend/internal/modules/product"
	"github.com/hakimbenali/mizan-backend/internal/modules/report"
	"github.com/hakimbenali/mizan-backend/internal/modules/sale"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"github.com/hakimbenali/mizan-backend/internal/web"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	store, err := storage.New(cfg.Data.Dir)
	if err != nil {
		return err
	}
	intents, err := storage.NewIntentLog(cfg.Data.Dir)
	if err != nil {
		return err
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Entities ────────────────────────────────────────────
	productRepo := product.NewJSONRepository(store)
	adjustmentRepo := product.NewJSONAdjustmentRepository(store)
	productService := product.NewService(productRepo, adjustmentRepo)
	product.NewHandler(productService).RegisterRoutes(router)

	saleRepo := sale.NewJSONRepository(store)
	saleService := sale.NewService(saleRepo, productService, intents, zlog)
	sale.NewHandler(saleService).RegisterRoutes(router)

	expenseRepo := expense.NewJSONRepository(store)
	expenseService := expense.NewService(expenseRepo)
	expense.NewHandler(expenseService).RegisterRoutes(router)

	// Replay any sale or cancellation a previous process died in the middle
	// of, before the API starts taking writes.
	if err := saleService.RecoverIntents(context.Background()); err != nil {
		return err
	}

	// ── Reporting ───────────────────────────────────────────
	reportService := report.NewService(productService, saleService, expenseService)
	report.NewHandler(reportService).RegisterRoutes(router)

	// ── Mirror & backups ────────────────────────────────────
	mirrorService, err := mirror.NewService(store, zlog, cfg.Mongo)
	if err != nil {
		return err
	}
	mirror.NewHandler(mirrorService).RegisterRoutes(router)

	// ── Accounts ────────────────────────────────────────────
	userRepo, err := auth.NewJSONRepository(cfg.Data.Dir)
	if err != nil {
		return err
	}
	authService := auth.NewService(userRepo, cfg.JWT)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Service index & metrics ─────────────────────────────
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		web.Respond(w, http.StatusOK, map[string]any{
			"name":    "mizan-backend",
			"message": "sales management API",
			"endpoints": map[string]string{
				"products":  "/api/products",
				"sales":     "/api/sales",
				"expenses":  "/api/expenses",
				"inventory": "/api/inventory",
				"backup":    "/api/backup",
				"users":     "/api/users",
			},
		})
	})
	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		web.FailStatus(w, http.StatusNotFound, "route not found")
	})

	// ── Background backup cycle ─────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := mirror.NewScheduler(mirrorService, zlog, cfg.Mongo.InitialDelay, cfg.Mongo.BackupInterval)
	go scheduler.Run(ctx)

	// ── Start server ────────────────────────────────────────
	server := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
