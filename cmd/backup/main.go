package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"modpaypal/internal/config"
	"modpaypal/internal/database"
	"modpaypal/internal/modules/backup"
	"modpaypal/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	courseID, err := strconv.ParseInt(os.Getenv("BACKUP_COURSE_ID"), 10, 64)
	if err != nil || courseID <= 0 {
		log.Fatal("BACKUP_COURSE_ID must be a positive course id")
	}
	dir := os.Getenv("BACKUP_DIR")
	if dir == "" {
		dir = "backup"
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	svc := backup.NewService(repository.NewInstanceRepository(db), cfg.WWWRoot, log.Printf)
	paths, err := svc.ExportCourse(context.Background(), courseID, dir)
	if err != nil {
		log.Fatalf("backup failed: %v", err)
	}
	log.Printf("backup completed: course_id=%d activities=%d dir=%s", courseID, len(paths), dir)
}
