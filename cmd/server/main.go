package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptbox-backend/internal/config"
	"promptbox-backend/internal/database"
	"promptbox-backend/internal/handlers"
	"promptbox-backend/internal/middleware"
	"promptbox-backend/internal/repository"
	"promptbox-backend/internal/router"
	"promptbox-backend/internal/services"
	"promptbox-backend/internal/websocket"
	"promptbox-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Promptbox Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Printf("✓ Environment variables loaded (model: %s, display mode: %s)", cfg.ChatModel, cfg.DisplayMode)

	// ──── Step 2: Initialize Redis Clients (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		var err error
		redisClients, err = database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		log.Println("✓ Redis connected")
	}

	// ──── Step 3: Initialize PostgreSQL + Migrations (optional) ────
	diagnostics := services.MultiRecorder{services.LogRecorder{}}
	var diagnosticRepo *repository.DiagnosticRepo
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		diagnosticRepo = repository.NewDiagnosticRepo(pool)
		diagnostics = append(diagnostics, diagnosticRepo)
	}

	// ──── Step 4: Initialize Completion Client ────
	chatClient, closeClient, err := services.NewChatClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("✗ Completion client initialization failed: %v", err)
	}
	defer closeClient()
	log.Printf("✓ Completion client initialized (%s)", chatClient.Model())

	// ──── Initialize Display Store ────
	var display services.DisplayStore
	if redisClients != nil {
		display = repository.NewRedisDisplayRepo(redisClients.Store, cfg.LatestOnly(), cfg.SessionTTL)
	} else {
		display = repository.NewMemoryDisplayRepo(cfg.LatestOnly(), cfg.SessionTTL)
	}

	// ──── Step 5: Start WebSocket Hub ────
	sessions := middleware.NewSessionAuth(cfg.SessionSecret, cfg.SessionTTL)
	var wsHub *websocket.Hub
	if redisClients != nil {
		wsHub = websocket.NewHub(redisClients.PubSub, sessions, display)
	} else {
		wsHub = websocket.NewHub(nil, sessions, display)
	}
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Services & Handlers ────
	submitService := services.NewSubmitService(chatClient, display, diagnostics, wsHub)
	dispatcher := worker.NewDispatcher()

	pageHandler := handlers.NewPageHandler(sessions, cfg.Env == "production")
	submitHandler := handlers.NewSubmitHandler(submitService, dispatcher)
	// A typed nil repo would not compare equal to nil inside the handler
	var diagnosticsHandler *handlers.DiagnosticsHandler
	if diagnosticRepo != nil {
		diagnosticsHandler = handlers.NewDiagnosticsHandler(diagnosticRepo)
	} else {
		diagnosticsHandler = handlers.NewDiagnosticsHandler(nil)
	}

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		sessions,
		pageHandler,
		submitHandler,
		diagnosticsHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		if err := dispatcher.Stop(ctx); err != nil {
			log.Printf("Dispatcher stop: %v", err)
		}
	}()

	log.Printf("✓ Promptbox Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-shutdownDone
}
