package repository

import (
	"context"
	"errors"

	"tripdesk/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var conversationColumns = []string{
	"id", "user_id", "destination", "start_date", "end_date", "budget",
	"travelers_count", "preferences", "status", "created_at", "updated_at",
}

type ConversationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConversationRepository(db *pgxpool.Pool, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConversationRepository) Create(ctx context.Context, c *models.Conversation) error {
	query := squirrel.Insert("conversations").
		Columns(conversationColumns...).
		Values(c.ID, c.UserID, c.Destination, c.StartDate, c.EndDate, c.Budget,
			c.TravelersCount, c.Preferences, c.Status, c.CreatedAt, c.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := squirrel.Select(conversationColumns...).
		From("conversations").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var c models.Conversation
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.UserID, &c.Destination, &c.StartDate, &c.EndDate, &c.Budget,
		&c.TravelersCount, &c.Preferences, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	query := squirrel.Select(conversationColumns...).
		From("conversations").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Destination, &c.StartDate, &c.EndDate, &c.Budget,
			&c.TravelersCount, &c.Preferences, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		conversations = append(conversations, &c)
	}

	return conversations, rows.Err()
}

// UpdatePreferences replaces the preferences bag. Last write wins; trip facts
// are user-declared and not merged.
func (r *ConversationRepository) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.Preferences) error {
	query := squirrel.Update("conversations").
		Set("preferences", prefs).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
