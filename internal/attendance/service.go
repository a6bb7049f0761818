package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arrajeevchandar/messhall/internal/mealclock"
)

// WriteMode selects the deployment's submission semantics. The two modes are
// mutually exclusive; a deployment picks one and keeps it.
type WriteMode int

const (
	// ModeUpsert overwrites an existing answer for the same date. Submission
	// is idempotent and repeatable until the cutoff.
	ModeUpsert WriteMode = iota
	// ModeCreateOnce rejects a second submission for an already-answered date.
	ModeCreateOnce
)

// ParseWriteMode maps the SUBMIT_MODE config value to a WriteMode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch s {
	case "", "upsert":
		return ModeUpsert, nil
	case "create-once":
		return ModeCreateOnce, nil
	}
	return ModeUpsert, fmt.Errorf("unknown submit mode %q", s)
}

// Store is the persistence surface the service needs.
type Store interface {
	Get(ctx context.Context, meal mealclock.Meal, email, date string) (*Record, error)
	Upsert(ctx context.Context, meal mealclock.Meal, rec Record) (bool, error)
	Create(ctx context.Context, meal mealclock.Meal, rec Record) error
	ListByDate(ctx context.Context, meal mealclock.Meal, date string) ([]Record, error)
}

// ErrInvalidStatus rejects anything other than yes/no. "no response" is a
// derived sentinel, never a submittable answer.
var ErrInvalidStatus = errors.New(`status must be "yes" or "no"`)

// ErrInvalidGuestCount rejects negative guest counts.
var ErrInvalidGuestCount = errors.New("guest count must be zero or more")

// ErrInvalidDate rejects dates not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Result describes an accepted submission.
type Result struct {
	Date    string
	Created bool
	Record  Record
}

// Service enacts submit-once-per-date semantics on top of the cutoff policy
// and the record store.
type Service struct {
	store  Store
	clock  mealclock.Clock
	policy mealclock.Policy
	mode   WriteMode
}

// NewService creates a submission service.
func NewService(store Store, clock mealclock.Clock, policy mealclock.Policy, mode WriteMode) *Service {
	return &Service{store: store, clock: clock, policy: policy, mode: mode}
}

// Submit records a member's answer for a meal. An empty targetDate resolves
// to the date the current instant applies to (rolling past the cutoff to
// tomorrow). Policy rejections come back as *mealclock.Rejection; duplicate
// submissions under ModeCreateOnce come back as ErrDuplicate. Nothing is
// written on any rejection.
func (s *Service) Submit(ctx context.Context, email string, meal mealclock.Meal, targetDate, status string, guestCount int) (Result, error) {
	if email == "" {
		return Result{}, errors.New("email required")
	}
	normalized := NormalizeStatus(status)
	if normalized == "" {
		return Result{}, ErrInvalidStatus
	}
	if guestCount < 0 {
		return Result{}, ErrInvalidGuestCount
	}
	if normalized == StatusNo {
		guestCount = 0
	}

	now := s.clock.Now()
	if targetDate == "" {
		targetDate = s.policy.ResolveTargetDate(meal, now)
	} else if _, err := time.Parse(mealclock.DateLayout, targetDate); err != nil {
		return Result{}, ErrInvalidDate
	}
	if err := s.policy.CanSubmit(meal, now, targetDate); err != nil {
		return Result{}, err
	}

	rec := Record{
		Email:      email,
		Date:       targetDate,
		Status:     normalized,
		GuestCount: guestCount,
	}

	switch s.mode {
	case ModeCreateOnce:
		if existing, err := s.store.Get(ctx, meal, email, targetDate); err != nil {
			return Result{}, err
		} else if existing != nil {
			return Result{}, ErrDuplicate
		}
		// The unique index settles any race the pre-check missed.
		if err := s.store.Create(ctx, meal, rec); err != nil {
			return Result{}, err
		}
		return Result{Date: targetDate, Created: true, Record: rec}, nil
	default:
		created, err := s.store.Upsert(ctx, meal, rec)
		if err != nil {
			return Result{}, err
		}
		return Result{Date: targetDate, Created: created, Record: rec}, nil
	}
}

// Lookup returns the member's own record for a date. When no record exists it
// returns a sentinel with the individual default status, not an error: a
// missing answer is a normal state for a member.
func (s *Service) Lookup(ctx context.Context, email string, meal mealclock.Meal, date string) (Record, error) {
	if date == "" {
		date = s.policy.ResolveTargetDate(meal, s.clock.Now())
	} else if _, err := time.Parse(mealclock.DateLayout, date); err != nil {
		return Record{}, ErrInvalidDate
	}
	rec, err := s.store.Get(ctx, meal, email, date)
	if err != nil {
		return Record{}, err
	}
	if rec == nil {
		return Record{Email: email, Date: date, Status: IndividualDefault}, nil
	}
	return *rec, nil
}
