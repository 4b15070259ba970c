package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/smartstock/smartstock-backend/internal/stock/consumers"
	"github.com/smartstock/smartstock-backend/internal/stock/events"
	"github.com/smartstock/smartstock-backend/internal/stock/handler"
	"github.com/smartstock/smartstock-backend/internal/stock/repository"
	"github.com/smartstock/smartstock-backend/internal/stock/service"
	"github.com/smartstock/smartstock-backend/pkg/config"
	"github.com/smartstock/smartstock-backend/pkg/database"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("stock-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("stock-service", cfg.Server.Environment)
	log.Info().Msg("starting Stock Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewStockEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	stockRepo := repository.NewStockRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	palletRepo := repository.NewPalletRepository(db)

	// Initialize services
	validator := service.NewLocationValidator(locationRepo, cfg.Stock.StrictLocationValidation, log)
	recorder := service.NewRecorder(movementRepo, materialRepo, cfg.Stock.DefaultUnit, log)
	ledger := service.NewLedger(db, stockRepo, materialRepo, validator, recorder, publisher, cfg.Stock.GroundLocation, log)
	renameService := service.NewRenameService(db, stockRepo, movementRepo, log)

	// Initialize handlers
	stockHandler := handler.NewStockHandler(ledger, stockRepo, log)
	movementHandler := handler.NewMovementHandler(movementRepo, log)
	locationHandler := handler.NewLocationHandler(locationRepo, stockRepo, publisher, cfg.Stock.GroundLocation, log)
	materialHandler := handler.NewMaterialHandler(materialRepo, log)
	receiptHandler := handler.NewReceiptHandler(receiptRepo, recorder, publisher, log)
	palletHandler := handler.NewPalletHandler(palletRepo, log)

	// Start user event consumer
	userConsumer, err := consumers.NewUserConsumer(rmq, renameService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := userConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start user event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "stock-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Stock ledger
		r.Route("/stock", func(r chi.Router) {
			r.Get("/", stockHandler.List)
			r.Post("/ingresa", stockHandler.Ingress)
			r.Post("/mover", stockHandler.Transfer)
			r.Post("/retirar", stockHandler.Withdraw)
			r.Get("/consulta/{code}", stockHandler.ByMaterial)
			r.Get("/ubicacion/{code}", stockHandler.ByLocation)
		})

		// Movement history
		r.Route("/historial", func(r chi.Router) {
			r.Get("/", movementHandler.List)
			r.Get("/usuario/{username}", movementHandler.ByUsername)
		})

		// Location registry
		r.Route("/ubicaciones", func(r chi.Router) {
			r.Get("/", locationHandler.List)
			r.Post("/", locationHandler.Create)
			r.Get("/{code}", locationHandler.Get)
			r.Put("/{code}", locationHandler.Update)
			r.Delete("/{code}", locationHandler.Delete)
		})

		// Material catalog
		r.Route("/materiales", func(r chi.Router) {
			r.Get("/", materialHandler.List)
			r.Post("/", materialHandler.Create)
			r.Get("/{code}", materialHandler.Get)
			r.Put("/{code}", materialHandler.Update)
			r.Delete("/{code}", materialHandler.Delete)
		})

		// Plant receipts
		r.Route("/recibos", func(r chi.Router) {
			r.Get("/", receiptHandler.List)
			r.Post("/", receiptHandler.Create)
		})

		// Pallets
		r.Route("/pallets", func(r chi.Router) {
			r.Get("/", palletHandler.List)
			r.Post("/", palletHandler.Create)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
