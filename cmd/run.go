package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"rallyledger/config"
	"rallyledger/database"
	"rallyledger/domain/interfaces"
	"rallyledger/domain/services"
	"rallyledger/httpapi"
	"rallyledger/infrastructure"
	"rallyledger/repository"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting rally ledger...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize NATS for ledger events and fulfillment notification
	log.Println("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if err := natsClient.EnsureLedgerEventStream(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ensure ledger event stream: %w", err)
	}
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient)

	// Initialize unit of work factory with a fresh transactional publisher
	// per unit of work
	uowFactory := repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewNATSTransactionalPublisher(eventPublisher)
	})

	// External attendance collaborator
	attendance := infrastructure.NewAttendanceClient(cfg.AttendanceServiceURL)

	// Ledger services
	reader := repository.NewLedgerReader(db)
	grantReader := repository.NewPendingGrantReader(db)
	catalogRepo := repository.NewCatalogRepository(db)

	grantService := services.NewGrantService(uowFactory)
	confirmationService := services.NewConfirmationService(grantReader, attendance, uowFactory, cfg.PendingGrantTTL)
	redemptionService := services.NewRedemptionService(uowFactory, reader)
	balanceService := services.NewBalanceService(reader, cfg.ListPageSize)
	catalogService := services.NewCatalogService(catalogRepo)
	adjustmentService := services.NewAdjustmentService(uowFactory)

	// HTTP API
	apiServer := httpapi.NewServer(
		grantService,
		confirmationService,
		redemptionService,
		balanceService,
		catalogService,
		adjustmentService,
	)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiServer.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API listening on %s in %s mode", cfg.HTTPAddr, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Printf("HTTP server error: %v", err)
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
