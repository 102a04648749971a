package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"glossa/internal/config"
	"glossa/internal/handler"
	"glossa/internal/llm"
	"glossa/internal/middleware"
	"glossa/internal/prompt"
	"glossa/internal/service/evaluation"
	"glossa/internal/service/token"
	"glossa/internal/session"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"realtime_model", cfg.RealtimeModel,
		"eval_model", cfg.EvalModel,
	)

	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set - upstream calls will fail")
	}

	// Phase script: built-in five phases unless a YAML override is given
	var phases []prompt.PhaseSpec
	if cfg.PhaseScriptPath != "" {
		loaded, err := prompt.LoadPhases(cfg.PhaseScriptPath)
		if err != nil {
			log.Fatalf("Failed to load phase script: %v", err)
		}
		phases = loaded
		logger.Info("phase script loaded", "path", cfg.PhaseScriptPath, "phases", len(phases))
	}

	// Remote model client (shared by token mint and final evaluation)
	client := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EvalTimeout, logger)

	// Session registry with TTL sweeper
	registry := session.NewRegistry(cfg.SessionTTL, logger)
	go registry.StartSweeper(context.Background(), time.Minute)

	// Services
	tokenService := token.NewService(client, token.Options{
		Model:          cfg.RealtimeModel,
		ToolName:       cfg.EvaluationToolName,
		Phases:         phases,
		ExpiresSeconds: cfg.TokenExpirySeconds,
		Timeout:        cfg.TokenTimeout,
		MaxRetries:     cfg.TokenMaxRetries,
	}, logger)
	evalService := evaluation.NewService(client, cfg.EvalModel, cfg.EvalTimeout, logger)

	// Handlers
	tokenHandler := handler.NewTokenHandler(tokenService, registry, cfg, logger)
	evalHandler := handler.NewEvaluationHandler(evalService, registry, logger)
	sessionHandler := handler.NewSessionHandler(registry, evalService, logger)
	eventsHandler := handler.NewEventsHandler(registry, cfg.EvaluationToolName, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.Health)

	// Token routes (the bare path predates the /api prefix; both are served)
	mux.HandleFunc("GET /token", tokenHandler.Mint)
	mux.HandleFunc("GET /api/token", tokenHandler.Mint)

	// Final evaluation routes
	mux.HandleFunc("POST /finalEvaluation", evalHandler.FinalEvaluation)
	mux.HandleFunc("POST /api/finalEvaluation", evalHandler.FinalEvaluation)

	// Session routes
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("POST /api/sessions/{id}/stop", sessionHandler.Stop)
	mux.HandleFunc("GET /api/sessions/{id}/events", eventsHandler.Mirror)

	// Build middleware chain (applied in reverse order, they wrap each other)
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestLogger(logger)(root)

	// CORS - outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived WebSocket mirrors
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
