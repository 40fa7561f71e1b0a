package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Class     string    `json:"class"`
	Board     string    `json:"board"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const uniqueViolation = "23505"

// Create stores the profile with a bcrypt hash of password. A taken email yields ErrDuplicate,
// a password bcrypt cannot hash yields ErrPasswordTooLong.
func (r *ProfileRepo) Create(ctx context.Context, p *Profile, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Email = normalizeEmail(p.Email)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	const q = `
insert into profiles (id, name, email, password_hash, class, board, subject, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, q, p.ID, p.Name, p.Email, string(hash), p.Class, p.Board, p.Subject, p.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *ProfileRepo) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	p, _, err := r.find(ctx, email)
	return p, err
}

// Authenticate returns the profile when password matches; unknown emails and mismatches both yield ErrInvalidCredentials.
func (r *ProfileRepo) Authenticate(ctx context.Context, email, password string) (*Profile, error) {
	p, hash, err := r.find(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

func (r *ProfileRepo) find(ctx context.Context, email string) (*Profile, string, error) {
	const q = `
select id, name, email, password_hash, class, board, subject, created_at
from profiles
where email = $1`
	var (
		p    Profile
		hash string
	)
	err := r.DB.QueryRowContext(ctx, q, normalizeEmail(email)).
		Scan(&p.ID, &p.Name, &p.Email, &hash, &p.Class, &p.Board, &p.Subject, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return &p, hash, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
