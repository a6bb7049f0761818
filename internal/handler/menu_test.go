package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arrajeevchandar/messhall/internal/config"
	"github.com/arrajeevchandar/messhall/internal/mealclock"
	"github.com/arrajeevchandar/messhall/internal/menu"
)

type fakeMenuStore struct {
	menus map[string]menu.DayMenu
	err   error
	calls int
}

func (f *fakeMenuStore) Get(_ context.Context, day string) (*menu.DayMenu, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.menus[day]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeMenuStore) List(context.Context) ([]menu.DayMenu, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []menu.DayMenu
	for _, m := range f.menus {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMenuStore) Put(_ context.Context, m menu.DayMenu) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.menus == nil {
		f.menus = make(map[string]menu.DayMenu)
	}
	f.menus[m.Day] = m
	return nil
}

func menuRouter(menus MenuStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(config.App{}, nil, mealclock.DefaultPolicy(), nil, nil, nil, menus, nil, nil, nil)
	r := gin.New()
	r.GET("/menu/:day", h.GetMenuDay)
	r.PUT("/menu/:day", h.PutMenuDay)
	return r
}

func TestGetMenuDay_InvalidDayIs400(t *testing.T) {
	store := &fakeMenuStore{}
	r := menuRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/menu/funday", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", w.Code)
	}
	if store.calls != 0 {
		t.Fatal("store touched for an invalid day")
	}
}

func TestGetMenuDay_StoreFailureIs500Generic(t *testing.T) {
	store := &fakeMenuStore{err: errors.New("pq: connection refused")}
	r := menuRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/menu/monday", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("response leaks store detail: %s", w.Body.String())
	}
}

func TestGetMenuDay_MissingDayIs404(t *testing.T) {
	r := menuRouter(&fakeMenuStore{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/menu/monday", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}

func TestPutMenuDay_StoreFailureIs500Generic(t *testing.T) {
	store := &fakeMenuStore{err: errors.New("pq: deadlock detected")}
	r := menuRouter(store)

	body := strings.NewReader(`{"lunch":["dal","rice"]}`)
	req := httptest.NewRequest(http.MethodPut, "/menu/monday", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "deadlock") {
		t.Fatalf("response leaks store detail: %s", w.Body.String())
	}
}

func TestPutMenuDay_InvalidDayIs400(t *testing.T) {
	store := &fakeMenuStore{}
	r := menuRouter(store)

	req := httptest.NewRequest(http.MethodPut, "/menu/funday", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", w.Code)
	}
	if store.calls != 0 {
		t.Fatal("store touched for an invalid day")
	}
}
