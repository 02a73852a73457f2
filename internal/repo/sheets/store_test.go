package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// fakeSheets serves a minimal values API for one spreadsheet.
type fakeSheets struct {
	values   [][]string
	lastPut  string // range of the last update
	putBody  [][]string
	appended [][]string
}

func (f *fakeSheets) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{"values": f.values})
		case r.Method == http.MethodPut:
			var body struct {
				Values [][]string `json:"values"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.putBody = body.Values
			// rng is the last path segment, escaped
			parts := strings.Split(r.URL.Path, "/")
			f.lastPut = parts[len(parts)-1]
			w.WriteHeader(200)
			_, _ = w.Write([]byte("{}"))
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, ":append"):
			var body struct {
				Values [][]string `json:"values"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.appended = append(f.appended, body.Values...)
			w.WriteHeader(200)
			_, _ = w.Write([]byte("{}"))
		default:
			w.WriteHeader(404)
		}
	})
}

func TestAppSheet_ListParsesRows(t *testing.T) {
	f := &fakeSheets{values: [][]string{
		{"app_id", "name", "availability", "last_update", "regions", "owner", "tier"},
		{"id111", "First App", "true", "2026-08-30 10:00:00", "us, de", "growth", "a"},
		{"id222", "", "false", "", "fr"},
		{"", "ghost row"},
	}}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	s := NewAppSheet(NewClient(srv.URL, "tok"), "sheet-1", zap.NewNop())
	apps, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 apps (blank app_id skipped), got %d", len(apps))
	}

	a := apps[0]
	if a.AppID != "id111" || a.Name != "First App" || !a.Available {
		t.Fatalf("first app wrong: %+v", a)
	}
	if len(a.Regions) != 2 || a.Regions[0] != "us" || a.Regions[1] != "de" {
		t.Fatalf("regions wrong: %+v", a.Regions)
	}
	if a.Row != 2 {
		t.Fatalf("row hint wrong: %d", a.Row)
	}
	if len(a.Fields) != 2 || a.Fields[0].Key != "owner" || a.Fields[0].Value != "growth" ||
		a.Fields[1].Key != "tier" {
		t.Fatalf("custom fields wrong: %+v", a.Fields)
	}
	if a.UpdatedAt.IsZero() {
		t.Fatalf("timestamp not parsed")
	}

	b := apps[1]
	if b.Name != "Unknown App" {
		t.Fatalf("missing name should default: %q", b.Name)
	}
	if b.Available {
		t.Fatalf("second app should be unavailable")
	}
	if b.Row != 3 {
		t.Fatalf("second row hint wrong: %d", b.Row)
	}
}

func TestAppSheet_UpdateWritesOnlyStatusColumns(t *testing.T) {
	f := &fakeSheets{values: [][]string{
		{"app_id", "name", "availability", "last_update", "regions"},
		{"id111", "First App", "false", "", "us"},
	}}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	s := NewAppSheet(NewClient(srv.URL, "tok"), "sheet-1", zap.NewNop())
	apps, _ := s.List(context.Background())

	if err := s.UpdateAvailability(context.Background(), apps[0], true, apps[0].UpdatedAt); err != nil {
		t.Fatalf("UpdateAvailability: %v", err)
	}
	// range targets row 2, columns C:D only
	if !strings.Contains(f.lastPut, "C2") || !strings.Contains(f.lastPut, "D2") {
		t.Fatalf("update range wrong: %s", f.lastPut)
	}
	if len(f.putBody) != 1 || len(f.putBody[0]) != 2 || f.putBody[0][0] != "true" {
		t.Fatalf("update body wrong: %+v", f.putBody)
	}
}

func TestDestSheet_ListDedupsAndAppends(t *testing.T) {
	f := &fakeSheets{values: [][]string{
		{"42", "ops chat"},
		{"42", "duplicate row"},
		{"77", "growth chat"},
	}}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	s := NewDestSheet(NewClient(srv.URL, "tok"), "sheet-2")
	dests, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dests) != 2 {
		t.Fatalf("expected read-side dedup to 2, got %d", len(dests))
	}
	if dests[0].ID != "42" || dests[0].Label != "ops chat" {
		t.Fatalf("first destination wrong: %+v", dests[0])
	}

	d := dests[1]
	d.ID = "99"
	if err := s.Append(context.Background(), d); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(f.appended) != 1 || f.appended[0][0] != "99" {
		t.Fatalf("append body wrong: %+v", f.appended)
	}
}
