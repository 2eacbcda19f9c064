package main

import (
	"flag"
	"log"

	"prompt-party/internal/config"
	"prompt-party/internal/db"
)

func main() {
	promptsPath := flag.String("prompts", "prompts.csv", "path to prompts csv")
	backupsPath := flag.String("backups", "", "path to backup answers csv (optional)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	inserted, err := db.LoadPrompts(conn, *promptsPath)
	if err != nil {
		log.Fatalf("failed to load prompts: %v", err)
	}
	log.Printf("loaded %d prompts", inserted)

	if *backupsPath != "" {
		inserted, err := db.LoadBackupAnswers(conn, *backupsPath)
		if err != nil {
			log.Fatalf("failed to load backup answers: %v", err)
		}
		log.Printf("loaded %d backup answers", inserted)
	}
}
