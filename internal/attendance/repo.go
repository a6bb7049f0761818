package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arrajeevchandar/messhall/internal/mealclock"
)

// ErrDuplicate reports a create against an existing (email, date) key. The
// unique constraint raises it under races too, so callers can treat a lost
// race exactly like a pre-checked duplicate.
var ErrDuplicate = errors.New("attendance already recorded for this date")

// Repository persists attendance records in Postgres, one table per meal.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// tableFor maps a meal to its table. Meals are a closed set; the default
// keeps unknown input away from SQL.
func tableFor(meal mealclock.Meal) string {
	if meal == mealclock.Dinner {
		return "dinner_records"
	}
	return "lunch_records"
}

// Get returns the record for (email, date), or nil when absent.
func (r *Repository) Get(ctx context.Context, meal mealclock.Meal, email, date string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, to_char(attendance_date, 'YYYY-MM-DD'), status, guest_count, created_at, updated_at
		FROM `+tableFor(meal)+`
		WHERE email = $1 AND attendance_date = $2
	`, email, date)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Email, &rec.Date, &rec.Status, &rec.GuestCount, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Upsert writes the record, overwriting any existing row for the same
// (email, date). It reports whether a new row was created.
func (r *Repository) Upsert(ctx context.Context, meal mealclock.Meal, rec Record) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO `+tableFor(meal)+` (id, email, attendance_date, status, guest_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email, attendance_date) DO UPDATE SET
			status = EXCLUDED.status,
			guest_count = EXCLUDED.guest_count,
			updated_at = NOW()
		RETURNING created_at = updated_at
	`, rec.ID, rec.Email, rec.Date, rec.Status, rec.GuestCount)
	var created bool
	if err := row.Scan(&created); err != nil {
		return false, err
	}
	return created, nil
}

// Create writes the record only if no row exists for the same (email, date);
// otherwise it returns ErrDuplicate and changes nothing.
func (r *Repository) Create(ctx context.Context, meal mealclock.Meal, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO `+tableFor(meal)+` (id, email, attendance_date, status, guest_count)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.Email, rec.Date, rec.Status, rec.GuestCount)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// ListByDate returns every record for a date.
func (r *Repository) ListByDate(ctx context.Context, meal mealclock.Meal, date string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, to_char(attendance_date, 'YYYY-MM-DD'), status, guest_count, created_at, updated_at
		FROM `+tableFor(meal)+`
		WHERE attendance_date = $1
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Date, &rec.Status, &rec.GuestCount, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
