package main

import (
	"artspace/internal/config" // Custom import path (Config)
	"artspace/internal/db"     // Custom import path (Database)
	"artspace/internal/server" // Seed account from config

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	if err := db.SeedAdmin(gdb, server.AdminSeed(cfg)); err != nil {
		logrus.Fatalf("seed failed: %v", err)
	}
}
