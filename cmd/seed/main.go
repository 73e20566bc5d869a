package main

import (
	"context"
	"log"
	"time"

	"tripdesk/internal/models"
	"tripdesk/internal/repository"
	"tripdesk/pkg/auth"
	"tripdesk/pkg/config"
	"tripdesk/pkg/logger"
	"tripdesk/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Starting database seeding...")

	if err := createSchema(ctx, db); err != nil {
		appLogger.Fatal("Failed to create schema", zap.Error(err))
	}
	appLogger.Info("Schema ready")

	if err := seedDemoData(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to seed demo data", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func createSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			destination TEXT NOT NULL DEFAULT '',
			start_date DATE,
			end_date DATE,
			budget TEXT NOT NULL DEFAULT '',
			travelers_count INT NOT NULL DEFAULT 1,
			preferences JSONB NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS travel_suggestions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(10,2),
			rating NUMERIC(2,1),
			image_url TEXT NOT NULL DEFAULT '',
			booking_url TEXT NOT NULL DEFAULT '',
			location JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestions_conversation ON travel_suggestions(conversation_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func seedDemoData(ctx context.Context, db *pgxpool.Pool, appLogger *zap.Logger) error {
	userRepo := repository.NewUserRepository(db, appLogger)
	convRepo := repository.NewConversationRepository(db, appLogger)
	suggestionRepo := repository.NewSuggestionRepository(db, appLogger)

	const demoEmail = "demo@tripdesk.dev"
	if _, err := userRepo.GetByEmail(ctx, demoEmail); err == nil {
		appLogger.Info("Demo user already exists, skipping seed")
		return nil
	}

	hash, err := auth.HashPassword("demo-password")
	if err != nil {
		return err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Email:     demoEmail,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return err
	}

	start := now.AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 5)
	conversation := &models.Conversation{
		ID:             uuid.New(),
		UserID:         user.ID,
		Destination:    "Paris",
		StartDate:      &start,
		EndDate:        &end,
		Budget:         "2000 EUR",
		TravelersCount: 2,
		Preferences: models.Preferences{
			"origin":      "Amsterdam (AMS)",
			"destination": "Paris (CDG)",
		},
		Status:    models.ConversationActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := convRepo.Create(ctx, conversation); err != nil {
		return err
	}

	price := func(v float64) *float64 { return &v }
	suggestions := []*models.Suggestion{
		{
			ID:             uuid.New(),
			ConversationID: conversation.ID,
			Kind:           models.KindFlight,
			Title:          "KLM AMS-CDG direct",
			Description:    "Morning departure, 1h20m",
			Price:          price(120),
			ImageURL:       "N/A",
			BookingURL:     "https://flights.booking.com/flights/AMS-CDG",
			Location:       models.Location{"origin": "AMS", "destination": "CDG", "departure": start.Format("2006-01-02")},
			CreatedAt:      now,
		},
		{
			ID:             uuid.New(),
			ConversationID: conversation.ID,
			Kind:           models.KindHotel,
			Title:          "Hotel Le Marais",
			Description:    "Boutique hotel near the city centre",
			Price:          price(780),
			Rating:         price(4.3),
			ImageURL:       "https://cf.bstatic.com/images/hotel/le-marais.jpg",
			BookingURL:     "https://www.booking.com/hotel/fr/le-marais.html",
			Location:       models.Location{"city": "Paris"},
			CreatedAt:      now.Add(time.Second),
		},
	}
	for _, s := range suggestions {
		if err := suggestionRepo.Create(ctx, s); err != nil {
			return err
		}
	}

	appLogger.Info("Seeded demo user and conversation",
		zap.String("email", demoEmail),
		zap.String("conversation_id", conversation.ID.String()),
	)
	return nil
}
