package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"familymeal/internal/auth"
	"familymeal/internal/calendar"
	"familymeal/internal/catalog"
	"familymeal/internal/config"
	"familymeal/internal/db"
	"familymeal/internal/family"
	"familymeal/internal/notify"
	"familymeal/internal/router"
	"familymeal/internal/shopping"
	"familymeal/internal/stock"
	"familymeal/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── ENV ─────────────────────────
	config.Load()

	if err := config.Require("JWT_SECRET", "DATABASE_URL"); err != nil {
		log.Fatalf("[API] %v", err)
	}

	// ───────────────────────── DB ─────────────────────────
	pgDB, err := db.ConnectPostgres(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	defer pgDB.Close()

	catalogRepo, closeCatalog, err := catalog.OpenStore(
		config.String("CATALOG_DRIVER", catalog.DriverPostgres),
		pgDB,
		config.String("SQLITE_PATH", "data/catalog.db"),
	)
	if err != nil {
		log.Fatalf("[API] catalog store: %v", err)
	}
	defer closeCatalog()

	// ───────────────────────── STORAGE ─────────────────────────
	objects := openObjectStore(ctx)

	// ───────────────────────── NOTIFY ─────────────────────────
	notifier := openNotifier()

	// ───────────────────────── METRICS ─────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ───────────────────────── SERVICES ─────────────────────────
	authService := auth.NewService(auth.NewPostgresUserRepository(pgDB))
	catalogService := catalog.NewService(catalogRepo, objects)
	familyService := family.NewService(family.NewPostgresRepository(pgDB), catalogRepo)
	stockService := stock.NewService(stock.NewPostgresRepository(pgDB), catalogRepo, familyService)
	calendarService := calendar.NewService(calendar.NewPostgresRepository(pgDB), catalogRepo, familyService)
	shoppingService := shopping.NewService(catalogRepo,
		shopping.WithMealPlans(calendarService),
		shopping.WithNotifier(notifier),
		shopping.WithArchive(objects),
		shopping.WithMetrics(shopping.NewMetrics(registry)),
	)

	// ───────────────────────── ROUTER ─────────────────────────
	r := router.NewRouter(router.Deps{
		Auth:        auth.NewHandler(authService),
		Catalog:     catalog.NewHandler(catalogService),
		Family:      family.NewHandler(familyService, catalogRepo),
		Stock:       stock.NewHandler(stockService),
		Calendar:    calendar.NewHandler(calendarService),
		Shopping:    shopping.NewHandler(shoppingService, familyService),
		Metrics:     registry,
		CORSOrigins: config.List("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	})

	// ───────────────────────── START ─────────────────────────
	addr := ":" + config.String("PORT", "8000")
	log.Printf("[API] running at http://localhost%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("[API] server stopped: %v", err)
	}
}

// openObjectStore returns R2 when configured and an in-memory store otherwise.
func openObjectStore(ctx context.Context) catalog.Storage {
	cfg, err := storage.R2ConfigFromEnv()
	if errors.Is(err, storage.ErrNotConfigured) {
		log.Println("[API] R2 not configured, keeping uploads in memory")
		return storage.NewMemoryStorage("memory://familymeal")
	}
	if err != nil {
		log.Fatalf("[API] %v", err)
	}

	client, err := storage.NewR2Client(ctx, cfg)
	if err != nil {
		log.Fatalf("[API] R2 init failed: %v", err)
	}
	return client
}

func openNotifier() notify.Notifier {
	cfg, ok, err := notify.SMTPConfigFromEnv()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	if !ok {
		log.Println("[API] SMTP not configured, email requests answer 501")
		return notify.NoopNotifier{}
	}
	return notify.NewSMTPNotifier(cfg)
}
