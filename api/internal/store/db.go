package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooLong    = errors.New("password is longer than 72 bytes")
)

// Open connects to Postgres through the pgx driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// pool sized for ~20 rps
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

const schema = `
create table if not exists scans (
    id          uuid primary key,
    user_email  text,
    text        text not null,
    engine      text not null default '',
    created_at  timestamptz not null default now()
);
create index if not exists scans_user_email_created_at_idx on scans (user_email, created_at desc);

create table if not exists profiles (
    id             uuid primary key,
    name           text not null,
    email          text not null unique,
    password_hash  text not null,
    class          text not null,
    board          text not null,
    subject        text not null,
    created_at     timestamptz not null default now()
);`

// EnsureSchema creates the tables the repositories use when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
