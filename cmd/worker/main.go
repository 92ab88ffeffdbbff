package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edupay-lk/edupay/internal/application/verification/services"
	verificationUsecases "github.com/edupay-lk/edupay/internal/application/verification/usecases"
	"github.com/edupay-lk/edupay/internal/infrastructure/config"
	"github.com/edupay-lk/edupay/internal/infrastructure/database"
	"github.com/edupay-lk/edupay/internal/infrastructure/extractor"
	"github.com/edupay-lk/edupay/internal/infrastructure/notification"
	"github.com/edupay-lk/edupay/internal/infrastructure/repository"
	"github.com/edupay-lk/edupay/internal/shared/biztime"
	"github.com/edupay-lk/edupay/internal/shared/db"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// The verification sweep worker runs the retry loop on its own, for
// deployments where the API process should not host background work.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	biztime.MustInit("")

	log := logger.NewLogger()
	log.Infow("starting verification sweep worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

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

	sweepUC := verificationUsecases.NewSweepPendingClaimsUseCase(
		claimRepo, dispatcher,
		verificationUsecases.SweepPendingClaimsConfig{
			Cooloff:     time.Duration(cfg.Verification.SweepCooloff) * time.Minute,
			MaxAttempts: cfg.Verification.SweepMaxAttempts,
		},
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Duration(cfg.Verification.SweepInterval) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runSweep := func() {
		sweepCtx, sweepCancel := context.WithTimeout(ctx, interval)
		defer sweepCancel()

		count, err := sweepUC.Execute(sweepCtx)
		if err != nil {
			log.Errorw("sweep run failed", "error", err)
			return
		}
		if count > 0 {
			log.Infow("pending claims re-queued", "count", count)
		}
	}

	log.Infow("sweep worker started", "interval", interval.String())
	runSweep()

	for {
		select {
		case <-ticker.C:
			runSweep()

		case sig := <-sigChan:
			log.Infow("received signal, shutting down", "signal", sig.String())
			cancel()
			log.Infow("sweep worker stopped")
			return
		}
	}
}
