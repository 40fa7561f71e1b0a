package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultScanLimit = 5
	MaxScanLimit     = 50
)

type Scan struct {
	ID        uuid.UUID `json:"id"`
	UserEmail string    `json:"user_email,omitempty"`
	Text      string    `json:"text"`
	Engine    string    `json:"engine,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

type ScanRepo struct{ DB *sql.DB }

func NewScanRepo(db *sql.DB) *ScanRepo { return &ScanRepo{DB: db} }

// Save inserts the scan, filling in ID and CreatedAt when they are zero.
func (r *ScanRepo) Save(ctx context.Context, s *Scan) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	const q = `
insert into scans (id, user_email, text, engine, created_at)
values ($1, nullif($2,''), $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, q, s.ID, strings.ToLower(strings.TrimSpace(s.UserEmail)), s.Text, s.Engine, s.CreatedAt)
	return err
}

func (r *ScanRepo) Get(ctx context.Context, id uuid.UUID) (*Scan, error) {
	const q = `
select id, coalesce(user_email,''), text, engine, created_at
from scans
where id = $1`
	var s Scan
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.UserEmail, &s.Text, &s.Engine, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListRecent returns the newest scans first. An empty email lists anonymous scans.
func (r *ScanRepo) ListRecent(ctx context.Context, email string, limit int) ([]Scan, error) {
	const q = `
select id, coalesce(user_email,''), text, engine, created_at
from scans
where coalesce(user_email,'') = $1
order by created_at desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, strings.ToLower(strings.TrimSpace(email)), ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Scan, 0, DefaultScanLimit)
	for rows.Next() {
		var s Scan
		if err := rows.Scan(&s.ID, &s.UserEmail, &s.Text, &s.Engine, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PurgeOlderThan deletes scans older than maxAge and reports how many were removed.
func (r *ScanRepo) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `delete from scans where created_at < $1`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultScanLimit
	case limit > MaxScanLimit:
		return MaxScanLimit
	}
	return limit
}
