package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"mailcraft/internal/guard"
	"mailcraft/internal/util"
	"mailcraft/pkg/ai"
	"mailcraft/services/writer/internal/app"
	"mailcraft/services/writer/internal/config"
	"mailcraft/services/writer/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel, "writer")

	gemini, err := ai.NewGeminiClient(ai.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GenerationModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		util.Fatal("failed to init gemini client", "err", err)
	}

	appCore, err := app.New(app.Config{
		Gemini:           gemini,
		DefaultLocale:    cfg.DefaultLocale,
		SupportedLocales: cfg.SupportedLocales,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		util.Fatal("invalid trustedProxyCidrs", "err", err)
	}

	var sessionGuard *guard.Guard
	if cfg.RedisAddr != "" {
		leaseTTL, _ := config.ParseDuration("inFlightTTL", cfg.InFlightTTL)
		gateTTL, _ := config.ParseDuration("failureGateTTL", cfg.FailureGateTTL)
		sessionGuard, err = guard.New(guard.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   "mailcraft:writer",
			LeaseTTL: leaseTTL,
			GateTTL:  gateTTL,
		})
		if err != nil {
			util.Fatal("failed to init session guard", "err", err)
		}
	} else {
		logger.Warn("redisAddr not set; overlapping and repeated submissions are not checked")
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		Guard:          sessionGuard,
		TrustedProxies: trustedProxies,
	})
	if err != nil {
		closeGuard(sessionGuard)
		util.Fatal("failed to init server", "err", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generation has no client-side deadline; keep the write window generous.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("writer starting", "model", gemini.Model(), "defaultLocale", cfg.DefaultLocale, "guard", sessionGuard != nil)
	if err := util.Serve(context.Background(), srv); err != nil {
		logger.Error("server error", "err", err)
	}
	closeGuard(sessionGuard)
}

func closeGuard(g *guard.Guard) {
	if g == nil {
		return
	}
	if err := g.Close(); err != nil {
		slog.Warn("close session guard", "err", err)
	}
}
