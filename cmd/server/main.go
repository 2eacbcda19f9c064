package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"prompt-party/internal/config"
	"prompt-party/internal/db"
	"prompt-party/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		log.Printf("running without database: %v", err)
		conn = nil
	} else {
		sqlDB, err := conn.DB()
		if err != nil {
			log.Fatalf("database handle unavailable: %v", err)
		}
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)

		// Development convenience; deployments run cmd/migrate instead.
		if os.Getenv("AUTO_MIGRATE") == "1" {
			if err := db.Migrate(conn); err != nil {
				log.Fatalf("auto-migration failed: %v", err)
			}
		}
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(conn, cfg)
	log.Printf("prompt-party server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
