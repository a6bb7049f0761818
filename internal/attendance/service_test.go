package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arrajeevchandar/messhall/internal/mealclock"
)

// fakeStore keeps records in a map keyed the same way the unique index keys
// them, so create-vs-upsert semantics behave like the real tables.
type fakeStore struct {
	records map[string]Record
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]Record)}
}

func key(meal mealclock.Meal, email, date string) string {
	return string(meal) + "|" + email + "|" + date
}

func (f *fakeStore) Get(_ context.Context, meal mealclock.Meal, email, date string) (*Record, error) {
	if f.failAll {
		return nil, errors.New("store down")
	}
	if rec, ok := f.records[key(meal, email, date)]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (f *fakeStore) Upsert(_ context.Context, meal mealclock.Meal, rec Record) (bool, error) {
	if f.failAll {
		return false, errors.New("store down")
	}
	k := key(meal, rec.Email, rec.Date)
	_, existed := f.records[k]
	f.records[k] = rec
	return !existed, nil
}

func (f *fakeStore) Create(_ context.Context, meal mealclock.Meal, rec Record) error {
	if f.failAll {
		return errors.New("store down")
	}
	k := key(meal, rec.Email, rec.Date)
	if _, exists := f.records[k]; exists {
		return ErrDuplicate
	}
	f.records[k] = rec
	return nil
}

func (f *fakeStore) ListByDate(_ context.Context, meal mealclock.Meal, date string) ([]Record, error) {
	if f.failAll {
		return nil, errors.New("store down")
	}
	var out []Record
	for _, rec := range f.records {
		if rec.Date == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

func istClock(t *testing.T, hour, min int) mealclock.Clock {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return mealclock.NewFixedClock(time.Date(2025, 7, 25, hour, min, 0, 0, loc))
}

func TestSubmit_ResolvesTargetDate(t *testing.T) {
	store := newFakeStore()

	// 08:59 lunch lands on today.
	svc := NewService(store, istClock(t, 8, 59), mealclock.DefaultPolicy(), ModeUpsert)
	res, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "", StatusYes, 0)
	if err != nil {
		t.Fatalf("submit before cutoff: %v", err)
	}
	if res.Date != "2025-07-25" || !res.Created {
		t.Fatalf("got date=%s created=%v, want 2025-07-25 created", res.Date, res.Created)
	}

	// 09:01 lunch rolls forward to tomorrow and is accepted.
	svc = NewService(store, istClock(t, 9, 1), mealclock.DefaultPolicy(), ModeUpsert)
	res, err = svc.Submit(context.Background(), "a@x", mealclock.Lunch, "", StatusYes, 0)
	if err != nil {
		t.Fatalf("submit after cutoff: %v", err)
	}
	if res.Date != "2025-07-26" {
		t.Fatalf("got date=%s, want 2025-07-26", res.Date)
	}
}

func TestSubmit_CutoffRejectsPinnedToday(t *testing.T) {
	svc := NewService(newFakeStore(), istClock(t, 16, 31), mealclock.DefaultPolicy(), ModeUpsert)

	_, err := svc.Submit(context.Background(), "a@x", mealclock.Dinner, "2025-07-25", StatusYes, 0)
	var rej *mealclock.Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("want rejection, got %v", err)
	}
}

func TestSubmit_UpsertIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeUpsert)

	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusYes, 3); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	res, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusYes, 5)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if res.Created {
		t.Fatal("second submit reported created, want updated")
	}
	if len(store.records) != 1 {
		t.Fatalf("got %d records, want 1", len(store.records))
	}
	rec := store.records[key(mealclock.Lunch, "a@x", "2025-07-25")]
	if rec.GuestCount != 5 {
		t.Fatalf("guest count %d, want 5", rec.GuestCount)
	}
}

func TestSubmit_CreateOnceRejectsSecond(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeCreateOnce)

	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusYes, 0); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusNo, 0)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	rec := store.records[key(mealclock.Lunch, "a@x", "2025-07-25")]
	if rec.Status != StatusYes {
		t.Fatalf("record changed to %q after rejected duplicate", rec.Status)
	}
}

// racingStore simulates losing a create race: the pre-check sees no record,
// but by the time the insert runs another request has taken the unique index.
type racingStore struct {
	*fakeStore
}

func (r *racingStore) Get(context.Context, mealclock.Meal, string, string) (*Record, error) {
	return nil, nil
}

func (r *racingStore) Create(context.Context, mealclock.Meal, Record) error {
	return ErrDuplicate
}

func TestSubmit_CreateOnceLostRace(t *testing.T) {
	store := &racingStore{fakeStore: newFakeStore()}
	svc := NewService(store, istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeCreateOnce)

	// A lost race at the unique index must look exactly like the
	// pre-checked duplicate.
	_, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusYes, 0)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("got %d records after lost race, want 0", len(store.records))
	}
}

func TestSubmit_GuestCountZeroedOnNo(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeUpsert)

	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", "No", 4); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rec := store.records[key(mealclock.Lunch, "a@x", "2025-07-25")]
	if rec.Status != StatusNo || rec.GuestCount != 0 {
		t.Fatalf("got status=%q guests=%d, want no/0", rec.Status, rec.GuestCount)
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc := NewService(newFakeStore(), istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeUpsert)

	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", "maybe", 0); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status: got %v", err)
	}
	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusNoResponse, 0); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("sentinel status must not be submittable: got %v", err)
	}
	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusYes, -1); !errors.Is(err, ErrInvalidGuestCount) {
		t.Fatalf("negative guests: got %v", err)
	}
	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "25-07-2025", StatusYes, 0); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("malformed date: got %v", err)
	}
	if _, err := svc.Submit(context.Background(), "", mealclock.Lunch, "2025-07-25", StatusYes, 0); err == nil {
		t.Fatal("empty email accepted")
	}
}

func TestSubmit_StoreFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	svc := NewService(store, istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeUpsert)

	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Lunch, "2025-07-25", StatusYes, 0); err == nil {
		t.Fatal("store failure swallowed")
	}
}

func TestLookup_DefaultsToNoResponse(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeUpsert)

	rec, err := svc.Lookup(context.Background(), "a@x", mealclock.Lunch, "2025-07-25")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Status != StatusNoResponse {
		t.Fatalf("got status %q, want %q", rec.Status, StatusNoResponse)
	}
	if rec.Date != "2025-07-25" || rec.Email != "a@x" {
		t.Fatalf("sentinel missing identity: %+v", rec)
	}
}

func TestLookup_ReturnsOwnRecord(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, istClock(t, 8, 0), mealclock.DefaultPolicy(), ModeUpsert)

	if _, err := svc.Submit(context.Background(), "a@x", mealclock.Dinner, "2025-07-25", StatusNo, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rec, err := svc.Lookup(context.Background(), "a@x", mealclock.Dinner, "2025-07-25")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Status != StatusNo {
		t.Fatalf("got status %q, want no", rec.Status)
	}
}
