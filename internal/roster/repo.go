package roster

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Member is one row of the membership roster. Active members are the ones a
// meal report enumerates; inactive members keep their record but drop out of
// reports and submissions.
type Member struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// ErrEmailTaken reports a registration against an existing email.
var ErrEmailTaken = errors.New("email already registered")

// Repository persists roster members in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new member.
func (r *Repository) Create(ctx context.Context, m Member) (Member, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO members (id, name, email, photo_url, active, password_hash, role)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at
	`, m.ID, m.Name, m.Email, m.PhotoURL, m.PasswordHash, m.Role)
	if err := row.Scan(&m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Member{}, ErrEmailTaken
		}
		return Member{}, err
	}
	m.Active = true
	return m, nil
}

// GetByEmail returns a member or nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, photo_url, active, password_hash, role, created_at
		FROM members WHERE email = $1
	`, email)
	var m Member
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.PhotoURL, &m.Active, &m.PasswordHash, &m.Role, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// List returns every member, active or not.
func (r *Repository) List(ctx context.Context) ([]Member, error) {
	return r.list(ctx, `
		SELECT id, name, email, photo_url, active, password_hash, role, created_at
		FROM members
		ORDER BY name, email
	`)
}

// ListActive returns the members eligible for meal reports, in a stable
// name-then-email order so report ranks are deterministic.
func (r *Repository) ListActive(ctx context.Context) ([]Member, error) {
	return r.list(ctx, `
		SELECT id, name, email, photo_url, active, password_hash, role, created_at
		FROM members
		WHERE active
		ORDER BY name, email
	`)
}

func (r *Repository) list(ctx context.Context, query string) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.PhotoURL, &m.Active, &m.PasswordHash, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// SetActive toggles membership status.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE members SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("member not found")
	}
	return nil
}

// SetPassword replaces a member's password hash, used by the OTP reset flow.
func (r *Repository) SetPassword(ctx context.Context, email, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE members SET password_hash = $2 WHERE email = $1`, email, hash)
	return err
}
