package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"zipper.com/internal/application/usecase"
	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/config"
	httphandler "zipper.com/internal/infrastructure/http"
	"zipper.com/internal/infrastructure/logger"
	"zipper.com/internal/infrastructure/repository"
	"zipper.com/internal/infrastructure/validator"
)

const serverDir = "server"

var apiServerCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "server",
	Short: "Run API Server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		bootLogger := logger.NewLogger()

		configDir := filepath.Join("cmd", "config", serverDir)
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			bootLogger.LogError(context.TODO(), "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger := bootLogger
		if cfg.Log.File != "" {
			appLogger = logger.NewRotatingLogger(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxAgeDays)
		}

		programs, err := cfg.ProgramIDs()
		if err != nil {
			return err
		}
		genesis, err := cfg.GenesisAccounts()
		if err != nil {
			return err
		}

		appLogger.LogInfo(context.TODO(), "Configuration loaded",
			"port", cfg.Server.Port,
			"ledger_driver", cfg.Ledger.Driver,
			"max_bundle_accounts", cfg.Ledger.MaxBundleAccounts,
			"system_program", programs.System.String(),
			"token_program", programs.Token.String())

		// Initialize infrastructure adapters
		var accountRepo port.AccountRepository
		switch cfg.Ledger.Driver {
		case config.DriverBolt:
			boltLedger, err := repository.NewBoltLedger(cfg.Ledger.Path, appLogger)
			if err != nil {
				return err
			}
			defer boltLedger.Close()
			accountRepo = boltLedger
		default:
			accountRepo = repository.NewInMemoryLedger(appLogger)
		}

		bundleValidator := validator.NewHMACValidator(
			cfg.Bundle.HMACSecret,
			cfg.Bundle.TimestampTolerance,
			appLogger,
		)

		// Initialize use cases
		classifier := usecase.NewClassifier(programs)
		verifyUseCase := usecase.NewVerifyBalancesUseCase(classifier, appLogger)
		executeUseCase := usecase.NewExecuteBundleUseCase(
			accountRepo,
			verifyUseCase,
			programs,
			cfg.Ledger.MaxBundleAccounts,
			appLogger,
		)
		simulateUseCase := usecase.NewSimulateBundleUseCase(executeUseCase, classifier)
		getAccountUseCase := usecase.NewGetAccountUseCase(accountRepo, classifier)

		created, err := usecase.NewSeedAccountsUseCase(accountRepo, programs).Execute(context.TODO(), genesis)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to seed genesis accounts", err)
			return err
		}
		appLogger.LogInfo(context.TODO(), "Genesis accounts seeded", "created", created, "configured", len(genesis))

		handler := httphandler.NewHandler(
			executeUseCase,
			simulateUseCase,
			getAccountUseCase,
			bundleValidator,
			appLogger,
		)

		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      handler.SetupRoutes(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		errChan := make(chan error, 1)

		go func() {
			appLogger.LogInfo(context.TODO(), "Starting server", "address", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		select {
		case <-signalChan:
			appLogger.LogInfo(context.TODO(), "Received termination signal. Initiating graceful shutdown...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.LogError(context.TODO(), "Server forced to shutdown", err)
				return err
			}

			appLogger.LogInfo(context.TODO(), "Server stopped gracefully")
		case err := <-errChan:
			appLogger.LogError(context.TODO(), "Server error", err)
			return err
		}

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}
