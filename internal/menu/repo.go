package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ImageItem is a menu entry that carries a picture, used for breakfast and
// snacks.
type ImageItem struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// DayMenu is one weekday's menu. Lunch and dinner entries are plain item
// names; the special lists hold that day's variants.
type DayMenu struct {
	Day           string      `json:"day"`
	Breakfast     []ImageItem `json:"breakfast"`
	Snacks        []ImageItem `json:"snacks"`
	Lunch         []string    `json:"lunch"`
	Dinner        []string    `json:"dinner"`
	SpecialLunch  []string    `json:"special_lunch"`
	SpecialDinner []string    `json:"special_dinner"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// NormalizeDay lowercases and validates a day-of-week key.
func NormalizeDay(day string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(day))
	if !weekdays[d] {
		return "", fmt.Errorf("invalid day %q", day)
	}
	return d, nil
}

// Repository persists the weekly menu in Postgres, one row per weekday.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns a day's menu, or nil when the day has none yet.
func (r *Repository) Get(ctx context.Context, day string) (*DayMenu, error) {
	day, err := NormalizeDay(day)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT day, breakfast, snacks, lunch, dinner, special_lunch, special_dinner, updated_at
		FROM menus WHERE day = $1
	`, day)
	m, err := scanMenu(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// List returns every stored day's menu in weekday order.
func (r *Repository) List(ctx context.Context) ([]DayMenu, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, breakfast, snacks, lunch, dinner, special_lunch, special_dinner, updated_at
		FROM menus
		ORDER BY array_position(ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday'], day)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var menus []DayMenu
	for rows.Next() {
		m, err := scanMenu(rows.Scan)
		if err != nil {
			return nil, err
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}

// Put creates or replaces a day's menu.
func (r *Repository) Put(ctx context.Context, m DayMenu) error {
	day, err := NormalizeDay(m.Day)
	if err != nil {
		return err
	}
	breakfast, err := json.Marshal(orEmptyItems(m.Breakfast))
	if err != nil {
		return err
	}
	snacks, err := json.Marshal(orEmptyItems(m.Snacks))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO menus (day, breakfast, snacks, lunch, dinner, special_lunch, special_dinner)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (day) DO UPDATE SET
			breakfast = EXCLUDED.breakfast,
			snacks = EXCLUDED.snacks,
			lunch = EXCLUDED.lunch,
			dinner = EXCLUDED.dinner,
			special_lunch = EXCLUDED.special_lunch,
			special_dinner = EXCLUDED.special_dinner,
			updated_at = NOW()
	`, day, breakfast, snacks,
		pqArray(m.Lunch), pqArray(m.Dinner), pqArray(m.SpecialLunch), pqArray(m.SpecialDinner))
	return err
}

func orEmptyItems(items []ImageItem) []ImageItem {
	if items == nil {
		return []ImageItem{}
	}
	return items
}

// pqArray renders a []string as a Postgres array literal. Entries come from
// form input, so quotes and backslashes are escaped.
func pqArray(items []string) string {
	if len(items) == 0 {
		return "{}"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		item = strings.ReplaceAll(item, `\`, `\\`)
		item = strings.ReplaceAll(item, `"`, `\"`)
		quoted[i] = `"` + item + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// parsePqArray undoes pqArray for values read back from text[] columns.
func parsePqArray(s string) []string {
	s = strings.TrimPrefix(strings.TrimSuffix(s, "}"), "{")
	if s == "" {
		return []string{}
	}
	var out []string
	var cur strings.Builder
	inQuote, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, cur.String())
	return out
}

func scanMenu(scan func(dest ...any) error) (*DayMenu, error) {
	var m DayMenu
	var breakfast, snacks []byte
	var lunch, dinner, specialLunch, specialDinner string
	if err := scan(&m.Day, &breakfast, &snacks, &lunch, &dinner, &specialLunch, &specialDinner, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(breakfast, &m.Breakfast); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snacks, &m.Snacks); err != nil {
		return nil, err
	}
	m.Lunch = parsePqArray(lunch)
	m.Dinner = parsePqArray(dinner)
	m.SpecialLunch = parsePqArray(specialLunch)
	m.SpecialDinner = parsePqArray(specialDinner)
	return &m, nil
}
