package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"forkthisidea/bot/internal/idea"
)

// PostgresStore keeps ideas in a single table. It is selected over Redis
// when DATABASE_URL is configured.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects, verifies the connection, and ensures the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ideas (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			submitted_at BIGINT NOT NULL,
			upvotes INT NOT NULL DEFAULT 0,
			downvotes INT NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure ideas table: %w", err)
	}
	return nil
}

const ideaColumns = `id, user_id, user_name, title, description, submitted_at, upvotes, downvotes`

func scanIdea(row interface{ Scan(...any) error }) (idea.Idea, error) {
	var item idea.Idea
	err := row.Scan(
		&item.ID, &item.UserID, &item.UserName, &item.Title,
		&item.Description, &item.Timestamp,
		&item.Votes.Upvotes, &item.Votes.Downvotes,
	)
	return item, err
}

func (s *PostgresStore) Create(ctx context.Context, userID, userName, title, description string, timestamp int64) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, user_id, user_name, title, description, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, userID, userName, title, description, timestamp)
	if err != nil {
		return "", fmt.Errorf("create idea: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, ideaID string) (*idea.Idea, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id = $1`, ideaID)
	item, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idea %s: %w", ideaID, err)
	}
	return &item, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]idea.Idea, error) {
	return s.list(ctx, `SELECT `+ideaColumns+` FROM ideas`)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]idea.Idea, error) {
	return s.list(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE user_id = $1`, userID)
}

func (s *PostgresStore) ListByTimeRange(ctx context.Context, start, end int64) ([]idea.Idea, error) {
	return s.list(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE submitted_at BETWEEN $1 AND $2`, start, end)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]idea.Idea, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []idea.Idea
	for rows.Next() {
		item, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, item)
	}
	return ideas, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context, userID string) (int, error) {
	var count int
	var err error
	if userID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ideas`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ideas WHERE user_id = $1`, userID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count ideas: %w", err)
	}
	return count, nil
}

// UpdateVotes mirrors the Redis backend's read-then-write cycle so both
// backends resolve deltas identically; concurrent deltas on the same idea
// can race.
func (s *PostgresStore) UpdateVotes(ctx context.Context, ideaID string, update VoteUpdate) (bool, error) {
	if err := update.validate(); err != nil {
		return false, err
	}

	var current idea.Votes
	err := s.db.QueryRowContext(ctx, `SELECT upvotes, downvotes FROM ideas WHERE id = $1`, ideaID).
		Scan(&current.Upvotes, &current.Downvotes)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get votes for idea %s: %w", ideaID, err)
	}

	next := update.apply(current)
	_, err = s.db.ExecContext(ctx, `UPDATE ideas SET upvotes = $1, downvotes = $2 WHERE id = $3`,
		next.Upvotes, next.Downvotes, ideaID)
	if err != nil {
		return false, fmt.Errorf("update votes for idea %s: %w", ideaID, err)
	}
	return true, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
