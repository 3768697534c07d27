// cmd/server/main.go
package main

import (
	"github.com/mtofleet/fleet-backend/api"
	"github.com/mtofleet/fleet-backend/config"
	"github.com/mtofleet/fleet-backend/internal/logger"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting Fleet Backend server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize Database Connection
	db, err := storage.Connect(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		customLog.Println("Closing database connection...")
		if err := db.Close(); err != nil {
			customLog.Printf("Error closing database: %v", err)
		}
	}()

	store := storage.NewStore(db)

	// 3. Setup Router (passing dependencies)
	router, err := api.SetupRouter(store, cfg)
	if err != nil {
		customLog.Fatalf("Failed to assemble routes: %v", err)
	}

	// 4. Start Server
	customLog.Printf("Server listening on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		customLog.Fatalf("Failed to start server: %v", err)
	}
}
