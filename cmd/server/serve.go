package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/column-task-api/internal/config"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/database"
	"github.com/yukikurage/column-task-api/internal/handlers"
	"github.com/yukikurage/column-task-api/internal/middleware"
	"github.com/yukikurage/column-task-api/internal/repository"
	"github.com/yukikurage/column-task-api/internal/services"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect, migrate and run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Connect to database
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}

	// Run migrations
	if err := database.MigrateDatabase(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	router, err := newRouter(cfg, db, store, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}

// newSessionStore builds the configured session backend
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case config.SessionStoreCookie:
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	}

	// Secure cookies only in release mode (HTTPS)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// newRouter wires repositories, services and handlers onto a gin engine
func newRouter(cfg *config.Config, db *gorm.DB, store sessions.Store, logger *slog.Logger) (*gin.Engine, error) {
	authService, err := services.NewAuthService(cfg.AuthUsername, cfg.AuthPasswordHash, cfg.AuthPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to configure login: %w", err)
	}

	// Initialize AI service
	var suggester services.SubtaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Println("OPENAI_API_KEY not set; subtask suggestions are disabled")
	}

	taskService := services.NewTaskService(repository.NewTaskRepository(db), suggester, cfg.MaxTreeDepth)
	providerService := services.NewProviderService(repository.NewTokenRepository(db))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, providerService, logger)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Column Task API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Task actions (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.Handle)
			tasks.POST("", taskHandler.Handle)
		}
	}

	return r, nil
}
