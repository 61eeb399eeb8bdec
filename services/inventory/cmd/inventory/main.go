package main

import (
	"context"
	"log"

	"github.com/shestoi/orderflow/services/inventory/internal/app"
	"github.com/shestoi/orderflow/services/inventory/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
