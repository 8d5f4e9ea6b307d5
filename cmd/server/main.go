package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/relink-app/relink/internal/analytics"
	"github.com/relink-app/relink/internal/cache"
	"github.com/relink-app/relink/internal/config"
	"github.com/relink-app/relink/internal/datacenter"
	"github.com/relink-app/relink/internal/db"
	"github.com/relink-app/relink/internal/geo"
	"github.com/relink-app/relink/internal/handlers"
	"github.com/relink-app/relink/internal/retention"
	"github.com/relink-app/relink/internal/ua"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	geoResolver, err := geo.Open(cfg.GeoIPPath)
	if err != nil {
		log.Printf("geo: %v (geo lookups disabled)", err)
		geoResolver, _ = geo.Open("")
	}
	defer geoResolver.Close()

	principals, err := cache.NewPrincipalCache(cfg.TokenCacheSize)
	if err != nil {
		log.Fatalf("token cache: %v", err)
	}

	recorder := analytics.NewRecorder(database, geoResolver, ua.New(cfg.UAFallback), cfg.BufferSize)
	recorder.SetBotFilter(cfg.FilterBots)

	var checker *datacenter.Checker
	if cfg.FilterDatacenter {
		checker = datacenter.NewChecker()
		recorder.SetIPChecker(checker)
	}

	auth := &handlers.Auth{Secret: []byte(cfg.JWTSecret), Cache: principals}
	linkHandler := &handlers.LinkHandler{DB: database, Cfg: cfg}
	analyticsHandler := &handlers.AnalyticsHandler{DB: database, Cfg: cfg}
	redirectHandler := &handlers.RedirectHandler{
		DB:            database,
		Recorder:      recorder,
		ArchivedURL:   cfg.ArchivedURL,
		LookupTimeout: cfg.LookupTimeout,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handlers.Health("relink"))

	r.Route("/api", func(r chi.Router) {
		// Public redacted stats for anonymous sharing
		r.Get("/public/links/{code}/stats", analyticsHandler.PublicStats)

		// Management API (authenticated)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/links", linkHandler.Create)
			r.Get("/links", linkHandler.List)
			r.Get("/links/{id}", linkHandler.Get)
			r.Patch("/links/{id}", linkHandler.Update)
			r.Delete("/links/{id}", linkHandler.Delete)
			r.Get("/links/{id}/qr", linkHandler.QRCode)
			r.Get("/analytics/links/{code}", analyticsHandler.LinkAnalytics)
			r.Get("/stats", analyticsHandler.OverallStats)
			r.Post("/admin/cleanup", analyticsHandler.Cleanup)
		})
	})

	// Everything else resolves as a short code
	r.Get("/{code}", redirectHandler.ServeHTTP)
	r.NotFound(redirectHandler.ServeHTTP)

	// Daily retention sweep
	cleaner := retention.NewScheduler(database, cfg.RetentionDays, 24*time.Hour)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("relink listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	cleaner.Stop()
	recorder.Shutdown()
	if checker != nil {
		checker.Stop()
	}
	log.Println("goodbye")
}
