package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ngo-site-backend/internal/config"
	"ngo-site-backend/internal/handlers"
	"ngo-site-backend/internal/middleware"
	"ngo-site-backend/internal/repository"
	"ngo-site-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize object storage
	storage, err := services.NewS3Storage(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object storage")
	}

	// Initialize repositories
	donationRepo := repository.NewDonationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Initialize services
	donationService := services.NewDonationService(donationRepo, storage)
	eventService := services.NewEventService(eventRepo, storage)
	galleryService := services.NewGalleryService(photoRepo, storage)
	blogService := services.NewBlogService(blogRepo, storage)
	adminService := services.NewAdminService(adminRepo, cfg.JWT.Secret)
	feedHub := services.NewFeedHub()

	// Initialize handlers
	donationHandler := handlers.NewDonationHandler(donationService, feedHub)
	eventHandler := handlers.NewEventHandler(eventService)
	galleryHandler := handlers.NewGalleryHandler(galleryService)
	blogHandler := handlers.NewBlogHandler(blogService)
	authHandler := handlers.NewAuthHandler(adminService)
	feedHandler := handlers.NewFeedHandler(feedHub, adminService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("NGO site backend is running"))
	})

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/events", eventHandler.List)
		r.Get("/photos", galleryHandler.List)
		r.Get("/blogs", blogHandler.List)

		r.Group(func(r chi.Router) {
			if cfg.RateLimit.Enabled {
				r.Use(middleware.RateLimit(newLimiter(cfg)))
			}
			r.Post("/donations", donationHandler.Submit)
		})

		// Admin routes behind a single auth guard
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(adminService))
			r.Get("/donations", donationHandler.List)
			r.Put("/donations/{id}/verify", donationHandler.Verify)
			r.Delete("/donations/{id}", donationHandler.Delete)
			r.Post("/events", eventHandler.Create)
			r.Delete("/events/{id}", eventHandler.Delete)
			r.Post("/photos", galleryHandler.Add)
			r.Delete("/photos/{id}", galleryHandler.Delete)
			r.Post("/blogs", blogHandler.Create)
			r.Delete("/blogs/{id}", blogHandler.Delete)
		})
	})

	// WebSocket route
	r.Get("/ws/admin-feed", feedHandler.HandleFeed)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newLimiter picks the redis limiter when an address is configured and falls
// back to the in-process one otherwise
func newLimiter(cfg *config.Config) middleware.Limiter {
	if cfg.Redis.Addr == "" {
		return middleware.NewLocalLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window())
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis rate limiter")
	return middleware.NewRedisLimiter(client, cfg.RateLimit.Limit, cfg.RateLimit.Window())
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
