package main

import (
	"log"
	"log/slog"

	"github.com/matthewar/snekframe/api"
	"github.com/matthewar/snekframe/config"
	"github.com/matthewar/snekframe/display"
	"github.com/matthewar/snekframe/library"
	"github.com/matthewar/snekframe/power"
	"github.com/matthewar/snekframe/remote"
	"github.com/matthewar/snekframe/slideshow"
	"github.com/matthewar/snekframe/store"
	"github.com/matthewar/snekframe/voltage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	database, err := store.NewDatabase(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	scanner := library.NewScanner(database, cfg.PhotosPath(), cfg.RescanInterval)
	slideshowManager := slideshow.NewManager(database, cfg.PhotosPath())
	displayController := display.NewController(cfg.OutputName, cfg.BacklightDevice)
	powerController := power.NewController()
	voltageMonitor := voltage.NewMonitor()

	// Apply the stored brightness on boot
	if cfg.BacklightDevice != "" {
		settings, err := database.GetSettings()
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		if err := displayController.SetBrightness(settings.Brightness); err != nil {
			slog.Warn("failed to apply stored brightness", "error", err)
		}
	}

	// Remote album sync is optional
	if cfg.S3Bucket != "" {
		remoteManager, err := remote.NewManager(cfg, scanner)
		if err != nil {
			log.Fatalf("Failed to initialize remote manager: %v", err)
		}
		go remoteManager.Run()
	}

	webServer := api.NewWebServer(
		cfg,
		database,
		scanner,
		slideshowManager,
		displayController,
		powerController,
		voltageMonitor,
	)
	webServer.Start(cfg.ListenAddr)
}
