// This file is used to run database migrations
// How to run:
// go run cmd/migrate/main.go
package main

import (
	"log"

	gormlogger "gorm.io/gorm/logger"

	"github.com/mediaforge/mediaforge/config"
	"github.com/mediaforge/mediaforge/internal/db"
)

func main() {
	config.LoadEnvFile()

	database, err := db.New(db.Options{
		Host:       config.GetEnv("DB_HOST", db.DefaultHost),
		User:       config.GetEnv("DB_USER", db.DefaultUser),
		Password:   config.GetEnv("DB_PASSWORD", db.DefaultPassword),
		DBName:     config.GetEnv("DB_NAME", db.DefaultDBName),
		Port:       config.GetEnvInt("DB_PORT", db.DefaultPort),
		SSLEnabled: config.GetEnv("DB_SSL_MODE", "disable") != "disable",
		LogLevel:   gormlogger.Info,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations applied")
}
