package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mailcraft/internal/util"
	"mailcraft/pkg/ai"
	"mailcraft/services/relay/internal/config"
	"mailcraft/services/relay/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel, "relay")
	if envErr != nil {
		logger.Debug("no .env file loaded", "err", envErr)
	}
	if cfg.AnthropicAPIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY is not set; upstream calls will be rejected")
	}

	completer := ai.NewAnthropicCompleter(ai.AnthropicConfig{
		APIKey:  cfg.AnthropicAPIKey,
		BaseURL: cfg.AnthropicBaseURL,
	})
	httpServer, err := server.New(completer)
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	if err := util.Serve(context.Background(), srv); err != nil {
		logger.Error("server error", "err", err)
	}
}
