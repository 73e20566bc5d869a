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

var suggestionColumns = []string{
	"id", "conversation_id", "kind", "title", "description",
	"price", "rating", "image_url", "booking_url", "location", "created_at",
}

type SuggestionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSuggestionRepository(db *pgxpool.Pool, logger *zap.Logger) *SuggestionRepository {
	return &SuggestionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SuggestionRepository) Create(ctx context.Context, s *models.Suggestion) error {
	query := squirrel.Insert("travel_suggestions").
		Columns(suggestionColumns...).
		Values(s.ID, s.ConversationID, s.Kind, s.Title, s.Description,
			s.Price, s.Rating, s.ImageURL, s.BookingURL, s.Location, s.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByConversation returns all suggestions for a conversation in insertion
// order. The order is load-bearing: itinerary replay depends on it for the
// first-seen flight fallback and the first-stay cost rule.
func (r *SuggestionRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*models.Suggestion, error) {
	query := squirrel.Select(suggestionColumns...).
		From("travel_suggestions").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("created_at ASC", "id ASC").
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

	return scanSuggestions(rows)
}

// GetByID fetches one suggestion scoped to a conversation. A row that exists
// but belongs to another conversation is reported as ErrNotFound.
func (r *SuggestionRepository) GetByID(ctx context.Context, conversationID, id uuid.UUID) (*models.Suggestion, error) {
	query := squirrel.Select(suggestionColumns...).
		From("travel_suggestions").
		Where(squirrel.Eq{"conversation_id": conversationID, "id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.Suggestion
	row := r.db.QueryRow(ctx, sql, args...)
	if err := scanSuggestion(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &s, nil
}

// ExistsByTitle reports whether a suggestion of the given kind and title is
// already stored for the conversation. Shop and leisure inserts use it to
// stay idempotent by title.
func (r *SuggestionRepository) ExistsByTitle(ctx context.Context, conversationID uuid.UUID, kind models.SuggestionKind, title string) (bool, error) {
	query := squirrel.Select("1").
		From("travel_suggestions").
		Where(squirrel.Eq{"conversation_id": conversationID, "kind": kind, "title": title}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	var one int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// SelectExclusive finalizes a suggestion: within one transaction it looks up
// the chosen row and deletes every other suggestion of the same kind in the
// conversation. The delete set excludes the chosen row by id, so a concurrent
// insert can at worst leave a row needing re-selection, never a deleted
// survivor. Returns the surviving suggestion and the number of rows removed.
func (r *SuggestionRepository) SelectExclusive(ctx context.Context, conversationID, id uuid.UUID) (*models.Suggestion, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	getQuery := squirrel.Select(suggestionColumns...).
		From("travel_suggestions").
		Where(squirrel.Eq{"conversation_id": conversationID, "id": id}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := getQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var s models.Suggestion
	row := tx.QueryRow(ctx, sql, args...)
	if err := scanSuggestion(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	delQuery := squirrel.Delete("travel_suggestions").
		Where(squirrel.Eq{"conversation_id": conversationID, "kind": s.Kind}).
		Where(squirrel.NotEq{"id": s.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = delQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	r.logger.Info("Removed unselected suggestions",
		zap.String("conversation_id", conversationID.String()),
		zap.String("kind", string(s.Kind)),
		zap.Int64("deleted", tag.RowsAffected()),
	)

	return &s, tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row rowScanner, s *models.Suggestion) error {
	return row.Scan(
		&s.ID, &s.ConversationID, &s.Kind, &s.Title, &s.Description,
		&s.Price, &s.Rating, &s.ImageURL, &s.BookingURL, &s.Location, &s.CreatedAt,
	)
}

func scanSuggestions(rows pgx.Rows) ([]*models.Suggestion, error) {
	var suggestions []*models.Suggestion
	for rows.Next() {
		var s models.Suggestion
		if err := scanSuggestion(rows, &s); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, &s)
	}
	return suggestions, rows.Err()
}
