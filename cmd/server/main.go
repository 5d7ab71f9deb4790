package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arisanku/savings-engine/internal/config"
	"github.com/arisanku/savings-engine/internal/handler"
	"github.com/arisanku/savings-engine/internal/logger"
	"github.com/arisanku/savings-engine/internal/repository"
	"github.com/arisanku/savings-engine/internal/service"
	"github.com/arisanku/savings-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.IsDevelopment(), cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	clock := clockwork.NewRealClock()

	// Initialize repositories
	campaignRepo := repository.NewCampaignRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	savingRepo := repository.NewSavingRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	txManager := repository.NewTxManager(db)

	// Initialize services
	campaignService := service.NewCampaignService(
		campaignRepo, contributionRepo, groupRepo, txManager, redisClient, cfg, clock, zapLogger)
	contributionService := service.NewContributionService(
		campaignRepo, contributionRepo, walletRepo, groupRepo, txManager, cfg, clock, zapLogger, campaignService)
	distributionService := service.NewDistributionService(
		campaignRepo, contributionRepo, walletRepo, groupRepo, txManager, clock, zapLogger, campaignService)
	savingService := service.NewSavingService(savingRepo, walletRepo, txManager, clock, zapLogger)

	// Initialize handlers
	campaignHandler := handler.NewCampaignHandler(campaignService, contributionService, distributionService)
	savingHandler := handler.NewSavingHandler(savingService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(campaignHandler, savingHandler, healthHandler, zapLogger)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	campaignHandler *handler.CampaignHandler,
	savingHandler *handler.SavingHandler,
	healthHandler *handler.HealthHandler,
	zapLogger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(zapLogger))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes require the identity headers set by the auth proxy
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.IdentityMiddleware)

	api.HandleFunc("/groups/{groupId}/campaigns", campaignHandler.CreateCampaign).Methods("POST")
	api.HandleFunc("/groups/{groupId}/campaigns/{campaignId}", campaignHandler.GetCampaign).Methods("GET")
	api.HandleFunc("/groups/{groupId}/campaigns/{campaignId}/contribute", campaignHandler.Contribute).Methods("PATCH")
	api.HandleFunc("/groups/{groupId}/campaigns/{campaignId}/distribute", campaignHandler.Distribute).Methods("POST")
	api.HandleFunc("/groups/{groupId}/campaigns/{campaignId}/distribution", campaignHandler.GetDistribution).Methods("GET")

	api.HandleFunc("/savings/individual", savingHandler.CreateIndividual).Methods("POST")
	api.HandleFunc("/savings/individual/{savingId}/contribute", savingHandler.ContributeIndividual).Methods("PATCH")
	api.HandleFunc("/savings/individual/{savingId}/payout", savingHandler.PayoutIndividual).Methods("PATCH")

	api.HandleFunc("/savings/flexible", savingHandler.CreateFlexible).Methods("POST")
	api.HandleFunc("/savings/flexible/{savingId}/contribute", savingHandler.ContributeFlexible).Methods("PATCH")
	api.HandleFunc("/savings/flexible/{savingId}/payout", savingHandler.PayoutFlexible).Methods("PATCH")

	return router
}
