package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familymeal/internal/calendar"
	"familymeal/internal/catalog"
	"familymeal/internal/config"
	"familymeal/internal/db"
	"familymeal/internal/digest"
	"familymeal/internal/family"
	"familymeal/internal/notify"
	"familymeal/internal/shopping"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.Load()

	log.Println("[DIGEST] worker starting...")

	if err := config.Require("DATABASE_URL"); err != nil {
		log.Fatalf("[DIGEST] %v", err)
	}

	interval, err := config.Duration("DIGEST_INTERVAL", 24*time.Hour)
	if err != nil {
		log.Fatalf("[DIGEST] %v", err)
	}

	smtpCfg, ok, err := notify.SMTPConfigFromEnv()
	if err != nil {
		log.Fatalf("[DIGEST] %v", err)
	}
	if !ok {
		log.Fatal("[DIGEST] SMTP_HOST is required for the digest worker")
	}

	pgDB, err := db.ConnectPostgres(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("[DIGEST] %v", err)
	}
	defer pgDB.Close()

	catalogRepo, closeCatalog, err := catalog.OpenStore(
		config.String("CATALOG_DRIVER", catalog.DriverPostgres),
		pgDB,
		config.String("SQLITE_PATH", "data/catalog.db"),
	)
	if err != nil {
		log.Fatalf("[DIGEST] catalog store: %v", err)
	}
	defer closeCatalog()

	familyService := family.NewService(family.NewPostgresRepository(pgDB), catalogRepo)
	calendarService := calendar.NewService(calendar.NewPostgresRepository(pgDB), catalogRepo, familyService)
	shoppingService := shopping.NewService(catalogRepo,
		shopping.WithMealPlans(calendarService),
		shopping.WithNotifier(notify.NewSMTPNotifier(smtpCfg)),
	)

	log.Printf("[DIGEST] sending weekly lists every %s. Press Ctrl+C to stop.", interval)
	digest.NewRunner(familyService, shoppingService).Run(ctx, interval)
	log.Println("[DIGEST] stopped")
}
