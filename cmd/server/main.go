package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/th2-export/backend/internal/api"
	"github.com/th2-export/backend/internal/config"
	"github.com/th2-export/backend/internal/export"
	"github.com/th2-export/backend/internal/parser"
	"github.com/th2-export/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, config.DefaultFileName)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize storage
	var exportStore *storage.LocalStore
	if cfg.Storage.EnablePersistence {
		exportStore, err = storage.OpenLocalStore(cfg.GetExportsDir())
	} else {
		exportStore, err = storage.NewLocalStore(cfg.GetExportsDir())
	}
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	registry := parser.GetGlobalRegistry()

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, cfg)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:    exportStore,
		Registry: registry,
		Exporter: export.NewExporter(nil),
		Config:   cfg,
		Version:  Version,
	}), cfg)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           th2 Export Server                               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Formats:    %-45v║\n", registry.Names())
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Exports:   %-46s║\n", cfg.GetExportsDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
