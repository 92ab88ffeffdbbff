package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/edupay-lk/edupay/internal/application/verification/services"
	verificationUsecases "github.com/edupay-lk/edupay/internal/application/verification/usecases"
	"github.com/edupay-lk/edupay/internal/infrastructure/cache"
	"github.com/edupay-lk/edupay/internal/infrastructure/config"
	"github.com/edupay-lk/edupay/internal/infrastructure/database"
	"github.com/edupay-lk/edupay/internal/infrastructure/extractor"
	"github.com/edupay-lk/edupay/internal/infrastructure/notification"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/migrations"
	"github.com/edupay-lk/edupay/internal/infrastructure/repository"
	"github.com/edupay-lk/edupay/internal/infrastructure/scheduler"
	httpRouter "github.com/edupay-lk/edupay/internal/interfaces/http"
	"github.com/edupay-lk/edupay/internal/interfaces/http/handlers"
	"github.com/edupay-lk/edupay/internal/shared/biztime"
	"github.com/edupay-lk/edupay/internal/shared/db"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the EduPay HTTP server with the verification pipeline, sweep scheduler and bank message webhook.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	biztime.MustInit("")

	logger.Info("starting server",
		"environment", env,
		"auto_migrate", autoMigrate)

	if env == "production" {
		cfg.Server.Mode = "release"
	}
	gin.SetMode(mapModeToGin(cfg.Server.Mode))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := migrations.MigrateVerificationTables(database.Get()); err != nil {
			logger.Fatal("failed to run migrations", "error", err)
		}
		logger.Info("database migrations applied")
	}

	log := logger.NewLogger()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Webhook dedup degrades gracefully without Redis; ingestion keeps
	// working, duplicates just land in the ledger twice.
	var dedup verificationUsecases.MessageDedup
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unavailable, webhook dedup disabled", "error", err)
	} else {
		dedup = cache.NewMessageDeduplicator(redisClient)
		logger.Info("Redis connection established")
	}

	claimRepo := repository.NewClaimRepository(database.Get())
	ledgerRepo := repository.NewLedgerRepository(database.Get())
	txManager := db.NewTransactionManager(database.Get())

	slipExtractor := extractor.NewGeminiExtractor(&cfg.Gemini, log)
	notifier := notification.NewEmailNotifier(&cfg.Email, log)
	committer := services.NewCommitter(claimRepo, ledgerRepo, txManager, log)

	verifyUC := verificationUsecases.NewVerifyClaimUseCase(
		claimRepo, ledgerRepo, slipExtractor, committer, notifier,
		verificationUsecases.VerifyClaimConfig{
			ApproveThreshold: cfg.Verification.ApproveThreshold,
			Lookback:         cfg.Verification.Lookback(),
			Proximity:        cfg.Verification.Proximity(),
			MaxAttempts:      cfg.Verification.SweepMaxAttempts,
		},
		log,
	)

	dispatcher := services.NewDispatcher(verifyUC,
		cfg.Verification.QueueWorkers, cfg.Verification.QueueSize, log)

	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	defer cancelDispatch()
	dispatcher.Start(dispatchCtx)
	defer dispatcher.Stop()

	sweepUC := verificationUsecases.NewSweepPendingClaimsUseCase(
		claimRepo, dispatcher,
		verificationUsecases.SweepPendingClaimsConfig{
			Cooloff:     time.Duration(cfg.Verification.SweepCooloff) * time.Minute,
			MaxAttempts: cfg.Verification.SweepMaxAttempts,
		},
		log,
	)

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		logger.Fatal("failed to create scheduler", "error", err)
	}
	if err := schedulerManager.RegisterSweepJob(sweepUC,
		time.Duration(cfg.Verification.SweepInterval)*time.Minute); err != nil {
		logger.Fatal("failed to register sweep job", "error", err)
	}
	schedulerManager.Start()
	defer schedulerManager.Stop()

	claimHandler := handlers.NewClaimHandler(
		verificationUsecases.NewSubmitClaimUseCase(claimRepo, dispatcher, log),
		verificationUsecases.NewListUserClaimsUseCase(claimRepo, log),
		verificationUsecases.NewListAllClaimsUseCase(claimRepo, log),
		verificationUsecases.NewUpdateClaimStatusUseCase(claimRepo, committer, log),
		log,
	)
	bankWebhookHandler := handlers.NewBankWebhookHandler(
		verificationUsecases.NewRecordBankMessageUseCase(ledgerRepo, dedup, cfg.Verification.DedupWindow(), log),
		verificationUsecases.NewListLedgerUseCase(ledgerRepo, log),
		log,
	)

	router := httpRouter.NewRouter(&cfg.Server, claimHandler, bankWebhookHandler, log)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

func mapModeToGin(mode string) string {
	switch mode {
	case "release", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
