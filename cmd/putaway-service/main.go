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

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/events"
	"github.com/tfc-warehouse/putaway-backend/internal/putaway/handler"
	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/internal/putaway/service"
	"github.com/tfc-warehouse/putaway-backend/pkg/auth"
	"github.com/tfc-warehouse/putaway-backend/pkg/config"
	"github.com/tfc-warehouse/putaway-backend/pkg/database"
	"github.com/tfc-warehouse/putaway-backend/pkg/httputil"
	"github.com/tfc-warehouse/putaway-backend/pkg/logger"
	"github.com/tfc-warehouse/putaway-backend/pkg/messaging"
)

func main() {
	cfg, err := config.LoadWithValidation("putaway-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("putaway-service", cfg.Server.Environment)
	log.Info().Msg("starting Putaway Service")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	publisher, err := events.NewTransferEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Repositories
	lotRepo := repository.NewLotRepository(db)
	binRepo := repository.NewBinRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	paramRepo := repository.NewParamRepository(db)
	remarkRepo := repository.NewRemarkRepository(db)
	transferRepo := repository.NewBinTransferRepository(db)

	// Service
	putawayService := service.New(db, lotRepo, binRepo, auditRepo, seqRepo,
		paramRepo, remarkRepo, transferRepo, publisher, log)

	// Handlers
	transferHandler := handler.NewTransferHandler(putawayService, log)
	lookupHandler := handler.NewLookupHandler(putawayService, log)

	verifier := auth.NewVerifier(&cfg.JWT)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.CorrelationID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "putaway-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	r.Route("/api/putaway", func(r chi.Router) {
		r.Use(httputil.Authenticate(verifier))

		r.Get("/availability", lookupHandler.Availability)
		r.Get("/bin/{location}/{bin_no}", lookupHandler.ValidateBin)
		r.Get("/remarks", lookupHandler.Remarks)
		r.Get("/transactions/{lot_no}/{bin_no}", lookupHandler.PendingTransactions)
		r.Get("/lot/{lot_no}", lookupHandler.Lot)
		r.Get("/lots/search", lookupHandler.SearchLots)
		r.Get("/bins/search", lookupHandler.SearchBins)

		r.Post("/transfer", transferHandler.Transfer)
		r.Post("/transfer/committed", transferHandler.TransferCommitted)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
