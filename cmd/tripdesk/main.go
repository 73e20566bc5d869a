package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tripdesk/internal/api"
	"tripdesk/internal/api/handlers"
	"tripdesk/internal/repository"
	"tripdesk/internal/search"
	"tripdesk/internal/service"
	"tripdesk/pkg/auth"
	"tripdesk/pkg/config"
	"tripdesk/pkg/logger"
	"tripdesk/pkg/postgres"

	"go.uber.org/zap"
)

// @title TripDesk API
// @version 1.0
// @description Conversational trip-planning assistant
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@tripdesk.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting TripDesk service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	convRepo := repository.NewConversationRepository(db, appLogger)
	msgRepo := repository.NewMessageRepository(db, appLogger)
	suggestionRepo := repository.NewSuggestionRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	itineraryService := service.NewItineraryService(suggestionRepo, service.SubstringMatcher{}, appLogger)

	hotels := search.NewHotels(&cfg.Booking, appLogger)
	flights := search.NewFlights(&cfg.Booking, appLogger)
	places := search.NewPlaces(&cfg.Geoapify, appLogger)

	chatService := service.NewChatService(&cfg.OpenAI, itineraryService, convRepo, msgRepo, hotels, flights, places, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	chatHandler := handlers.NewChatHandler(chatService, convRepo, appLogger)
	suggestionHandler := handlers.NewSuggestionHandler(itineraryService, convRepo, appLogger)
	selectionHandler := handlers.NewSelectionHandler(itineraryService, convRepo, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, chatHandler, suggestionHandler, selectionHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
