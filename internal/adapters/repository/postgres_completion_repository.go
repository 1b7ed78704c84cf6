package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var _ domain.CompletionRepository = (*PostgresCompletionRepository)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	// raised for ids that are not valid UUIDs
	invalidTextRepresentation = "22P02"
)

// sqlState extracts the SQLSTATE code from either driver's error type.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool     { return sqlState(err) == uniqueViolation }
func isForeignKeyViolation(err error) bool { return sqlState(err) == foreignKeyViolation }

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

func (r *PostgresCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	query := `
		INSERT INTO habit_completions (id, habit_id, user_id, completion_date, created_at)
		VALUES (:id, :habit_id, :user_id, :completion_date, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyCompleted
		case isForeignKeyViolation(err):
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

func (r *PostgresCompletionRepository) DeleteByDate(ctx context.Context, habitID, userID string, date domain.Date) error {
	query := `
		DELETE FROM habit_completions
		WHERE habit_id = $1
		  AND user_id = $2
		  AND completion_date = $3`

	result, err := r.db.ExecContext(ctx, query, habitID, userID, date)
	if err != nil {
		return fmt.Errorf("delete completion failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (r *PostgresCompletionRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	completions := []*domain.Completion{}
	query := `
		SELECT id, habit_id, user_id, completion_date, created_at
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completion_date DESC`

	if err := r.db.SelectContext(ctx, &completions, query, habitID); err != nil {
		return nil, fmt.Errorf("list completions failed: %w", err)
	}
	return completions, nil
}

func (r *PostgresCompletionRepository) ListByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]*domain.Completion, error) {
	grouped := make(map[string][]*domain.Completion, len(habitIDs))
	if len(habitIDs) == 0 {
		return grouped, nil
	}

	var completions []*domain.Completion
	query := `
		SELECT id, habit_id, user_id, completion_date, created_at
		FROM habit_completions
		WHERE habit_id = ANY($1)
		ORDER BY completion_date DESC`

	if err := r.db.SelectContext(ctx, &completions, query, pq.Array(habitIDs)); err != nil {
		return nil, fmt.Errorf("batch list completions failed: %w", err)
	}

	for _, c := range completions {
		grouped[c.HabitID] = append(grouped[c.HabitID], c)
	}
	return grouped, nil
}

func (r *PostgresCompletionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Completion, error) {
	completions := []*domain.Completion{}
	query := `
		SELECT id, habit_id, user_id, completion_date, created_at
		FROM habit_completions
		WHERE user_id = $1
		ORDER BY completion_date DESC`

	if err := r.db.SelectContext(ctx, &completions, query, userID); err != nil {
		return nil, fmt.Errorf("list user completions failed: %w", err)
	}
	return completions, nil
}

func (r *PostgresCompletionRepository) ListByUserIDAndRange(ctx context.Context, userID string, from, to domain.Date) ([]*domain.Completion, error) {
	completions := []*domain.Completion{}
	query := `
		SELECT id, habit_id, user_id, completion_date, created_at
		FROM habit_completions
		WHERE user_id = $1
		  AND completion_date >= $2
		  AND completion_date <= $3
		ORDER BY completion_date ASC`

	if err := r.db.SelectContext(ctx, &completions, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("range query failed: %w", err)
	}
	return completions, nil
}
