package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/studiojuai/studio-agent/internal/api"
	"github.com/studiojuai/studio-agent/internal/cloud"
	"github.com/studiojuai/studio-agent/internal/config"
	"github.com/studiojuai/studio-agent/internal/db"
	"github.com/studiojuai/studio-agent/internal/logging"
	"github.com/studiojuai/studio-agent/internal/project"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting studio agent",
		"version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := project.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                  STUDIO AGENT v%-7s                    ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	cloudClient := cloud.NewHTTPClient(cfg.BackendBaseURL(), cfg.BackendToken(), logger)
	logger.Info("backend configured",
		"base_url", cfg.BackendBaseURL(),
		"token", logging.SanitizeToken(cfg.BackendToken()),
	)

	workspace := project.NewWorkspace(project.WorkspaceConfig{
		Repo:         repo,
		Client:       cloudClient,
		Logger:       logger,
		UserID:       cfg.UserID(),
		PollInterval: cfg.PollInterval(),
		MaxAttempts:  cfg.PollMaxAttempts(),
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:          cfg.Port(),
		Workspace:     workspace,
		Repository:    repo,
		Assets:        cloudClient.Assets(),
		Logger:        logger,
		StartTime:     startTime,
		AdminPassword: cfg.AdminPassword(),
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	logger.Info("initiating graceful shutdown")
	workspace.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(repo project.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
