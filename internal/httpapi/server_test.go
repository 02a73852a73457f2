package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/registry"
	"github.com/okunev/appwatch/internal/repo/memory"
)

func seededStore() *memory.Store {
	store := memory.New()
	store.Seed(&domain.App{AppID: "123456", Name: "Example App", Regions: []string{"us", "de"}})
	return store
}

func newTestServer(keys []string) *Server {
	store := seededStore()
	reg := registry.New(zap.NewNop(), store.Destinations())
	return NewServer(zap.NewNop(), store, reg, keys)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
}

func TestListApps(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/apps", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "app_id") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAddDestination(t *testing.T) {
	srv := newTestServer(nil)
	router := srv.Router()

	body := `{"url":"https://hooks.example.com/x","label":"ops"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/destinations", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}

	// second registration of the same URL is a no-op
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/destinations", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate status: %d", rec.Code)
	}
	if len(srv.Registry.List()) != 1 {
		t.Fatalf("duplicate must not re-register: %+v", srv.Registry.List())
	}
}

func TestAddDestinationRejectsBadPayload(t *testing.T) {
	srv := newTestServer(nil)
	router := srv.Router()

	for _, body := range []string{``, `{}`, `{"url":"not a url"}`, `{"url":"nohost"}`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/destinations", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: got %d want 400", body, rec.Code)
		}
	}
}

func TestAPIKeyGuardsAPIButNotHealth(t *testing.T) {
	srv := newTestServer([]string{"sekret"})
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz must stay open: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/apps", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated api call: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/apps", nil)
	req.Header.Set("X-API-Key", "sekret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated api call: %d", rec.Code)
	}
}

func TestListAppsFormatsUpdatedAt(t *testing.T) {
	store := seededStore()
	apps, _ := store.List(context.Background())
	_ = store.UpdateAvailability(context.Background(), apps[0], true, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	srv := NewServer(zap.NewNop(), store, registry.New(zap.NewNop(), nil), nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/apps", nil))
	if !strings.Contains(rec.Body.String(), "2026-03-01 12:00:00") {
		t.Fatalf("updated_at missing: %s", rec.Body.String())
	}
}
