// Package api is the main api web server
package api

import (
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthewar/snekframe/config"
	"github.com/matthewar/snekframe/display"
	"github.com/matthewar/snekframe/library"
	"github.com/matthewar/snekframe/power"
	"github.com/matthewar/snekframe/slideshow"
	"github.com/matthewar/snekframe/store"
	"github.com/matthewar/snekframe/sysinfo"
	"github.com/matthewar/snekframe/voltage"
)

//go:embed web/templates/* web/static/**
var webFiles embed.FS

type WebServer struct {
	router *gin.Engine
	db     *store.Database
	cfg    *config.Config

	scanner   *library.Scanner
	slideshow *slideshow.Manager
	display   *display.Controller
	scheduler *display.Scheduler
	power     *power.Controller
	voltage   *voltage.Monitor
	sysinfo   *sysinfo.Resolver

	Updated chan bool
}

func NewWebServer(
	cfg *config.Config,
	db *store.Database,
	scanner *library.Scanner,
	slideshowManager *slideshow.Manager,
	displayController *display.Controller,
	powerController *power.Controller,
	voltageMonitor *voltage.Monitor,
) *WebServer {
	router := gin.Default()

	ws := &WebServer{
		router:    router,
		db:        db,
		cfg:       cfg,
		scanner:   scanner,
		slideshow: slideshowManager,
		display:   displayController,
		power:     powerController,
		voltage:   voltageMonitor,
		sysinfo:   sysinfo.NewResolver(),
		Updated:   make(chan bool, 1),
	}

	scheduler, err := display.NewScheduler(db, displayController)
	if err != nil {
		log.Fatalf("Failed to initialize display scheduler: %v", err)
	}
	ws.scheduler = scheduler

	// Setup routes
	ws.setupRoutes()

	return ws
}

func (ws *WebServer) setupRoutes() {
	// Create filesystem for static files (strip "web/" prefix)
	staticFS, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		log.Fatalf("Failed to create static filesystem: %v", err)
	}

	// Create filesystem for templates
	templatesFS, err := fs.Sub(webFiles, "web/templates")
	if err != nil {
		log.Fatalf("Failed to create templates filesystem: %v", err)
	}

	// Serve static files from embedded filesystem
	ws.router.StaticFS("static", http.FS(staticFS))

	ws.router.GET("/favicon.svg", func(c *gin.Context) {
		c.Header("Content-Type", "image/svg+xml")
		data, err := webFiles.ReadFile("web/static/images/favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", data)
	})

	// Serve index.html from embedded filesystem
	ws.router.GET("/", func(c *gin.Context) {
		data, err := fs.ReadFile(templatesFS, "index.html")
		if err != nil {
			slog.Error("failed to read index.html", "error", err)
			c.String(http.StatusInternalServerError, "Failed to load index.html")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})

	ws.router.GET("/ui/albums", ws.handleUIAlbums)
	ws.router.GET("/ui/albums/:album/photos", ws.handleUIAlbumPhotos)

	// API routes
	ws.router.GET("/library/photos", ws.handleListPhotos)
	ws.router.GET("/library/photos/:id/image", ws.handlePhotoImage)
	ws.router.PUT("/library/photos/:id/selected", ws.handleSelectPhoto)
	ws.router.PUT("/library/photos/:id/caption", ws.handleSetCaption)
	ws.router.GET("/library/albums", ws.handleListAlbums)
	ws.router.PUT("/library/albums/:album/selected", ws.handleSelectAlbum)
	ws.router.PUT("/library/selected", ws.handleSelectAll)
	ws.router.POST("/library/rescan", ws.handleRescan)
	ws.router.GET("/settings", ws.handleGetSettings)
	ws.router.PUT("/settings", ws.handleUpdateSettings)
	ws.router.POST("/slideshow/restart", ws.handleRestartSlideshow)
	ws.router.POST("/slideshow/stop", ws.handleStopSlideshow)
	ws.router.POST("/slideshow/play/:id", ws.handlePlayFromPhoto)
	ws.router.GET("/display/power", ws.handleGetDisplay)
	ws.router.PUT("/display/power/:state", ws.handleUpdateDisplay)
	ws.router.GET("/display/brightness", ws.handleGetBrightness)
	ws.router.PUT("/display/brightness", ws.handleSetBrightness)
	ws.router.GET("/system", ws.handleSystemInfo)
	ws.router.GET("/system/power", ws.handlePowerStatus)
	ws.router.POST("/system/shutdown", ws.handleShutdown)
	ws.router.POST("/system/reboot", ws.handleReboot)
	ws.router.POST("/system/power/cancel", ws.handleCancelPower)
}

func (ws *WebServer) Start(addr string) {
	// listen for updates and restart the slideshow
	go func() {
		for {
			select {
			case <-ws.Updated:
			case <-ws.scanner.Updated:
			}
			slog.Info("found new updates, restarting slideshow")
			if err := ws.slideshow.Restart(nil); err != nil {
				slog.Error("error while restarting slideshow from update", "error", err)
			}
		}
	}()

	go ws.scanner.Run()
	go ws.scheduler.Run()
	go ws.voltage.Run()

	log.Printf("Starting web server on %s", addr)
	if err := ws.router.Run(addr); err != nil {
		log.Fatalf("Failed to start web server: %v", err)
	}
}
