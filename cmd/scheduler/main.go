package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/arisanku/savings-engine/internal/config"
	"github.com/arisanku/savings-engine/internal/logger"
	"github.com/arisanku/savings-engine/internal/repository"
	"github.com/arisanku/savings-engine/internal/service"
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

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	campaignRepo := repository.NewCampaignRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	txManager := repository.NewTxManager(db)

	reconciler := service.NewReconcileService(
		campaignRepo, contributionRepo, txManager, clockwork.NewRealClock(), zapLogger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		zapLogger.Fatal("invalid scheduler timezone", zap.Error(err))
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, reconciler, zapLogger)

	// Start the scheduler
	c.Start()
	zapLogger.Info("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down scheduler")
	<-c.Stop().Done()
	zapLogger.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, reconciler *service.ReconcileService, zapLogger *zap.Logger) {
	// Daily job to move scheduled campaigns whose start date has arrived to
	// ongoing (runs at midnight)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		zapLogger.Info("running campaign activation job")
		if err := reconciler.ActivateDueCampaigns(ctx); err != nil {
			zapLogger.Error("campaign activation job failed", zap.Error(err))
		}
	})
	if err != nil {
		zapLogger.Error("failed to schedule campaign activation job", zap.Error(err))
	}

	// Daily job to fail the remaining pending contributions of matured
	// campaigns, recording the forfeited penalties (runs shortly after
	// midnight so activation goes first)
	_, err = c.AddFunc("0 15 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		zapLogger.Info("running matured campaign close-out job")
		if err := reconciler.CloseOutMaturedCampaigns(ctx); err != nil {
			zapLogger.Error("matured campaign close-out job failed", zap.Error(err))
		}
	})
	if err != nil {
		zapLogger.Error("failed to schedule matured campaign close-out job", zap.Error(err))
	}

	zapLogger.Info("cron jobs scheduled")
}
