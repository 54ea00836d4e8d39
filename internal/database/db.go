package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB represents a database connection
type DB struct {
	*sql.DB
	now func() time.Time
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection and ensures the schema exists
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return Wrap(ctx, db)
}

// Wrap adopts an open connection and creates the tables if they don't exist
func Wrap(ctx context.Context, db *sql.DB) (*DB, error) {
	if err := createTables(ctx, db); err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &DB{DB: db, now: time.Now}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS alert_subscribers (
			chat_id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Subscribe registers a chat for alerts. Subscribing twice keeps the original date.
func (db *DB) Subscribe(ctx context.Context, chatID, userID int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO alert_subscribers (chat_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id)
		DO UPDATE SET user_id = EXCLUDED.user_id
	`, chatID, userID, db.now())
	return err
}

// Unsubscribe removes a chat. It reports whether the chat was subscribed.
func (db *DB) Unsubscribe(ctx context.Context, chatID int64) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM alert_subscribers WHERE chat_id = $1`, chatID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ChatIDs lists every subscribed chat, oldest subscription first
func (db *DB) ChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT chat_id FROM alert_subscribers ORDER BY created_at, chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
