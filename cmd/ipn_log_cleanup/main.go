package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"modpaypal/internal/database"
	"modpaypal/internal/repository"
)

const defaultRetention = 90 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	retention := defaultRetention
	if v := os.Getenv("IPN_LOG_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid IPN_LOG_RETENTION %q", v)
		}
		retention = d
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	cutoff := time.Now().Add(-retention)
	n, err := repository.NewIPNLogRepository(db).PurgeBefore(context.Background(), cutoff)
	if err != nil {
		log.Fatalf("cleanup paypal_ipn_log failed: %v", err)
	}

	log.Printf("ipn log cleanup completed: deleted=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
}
