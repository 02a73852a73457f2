package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serveStatus(t *testing.T, code int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}))
}

func TestStoreProber_Classification(t *testing.T) {
	cases := []struct {
		code int
		want Status
	}{
		{200, StatusAvailable},
		{404, StatusUnavailable},
		{500, StatusIndeterminate},
		{503, StatusIndeterminate},
		{302, StatusUnavailable}, // ambiguous codes are never "available"
		{403, StatusUnavailable},
	}
	for _, tc := range cases {
		s := serveStatus(t, tc.code)
		p := NewStoreProber(s.URL, 2*time.Second)
		out := p.Probe(context.Background(), "id1", "us")
		s.Close()
		if out.Status != tc.want {
			t.Fatalf("code %d: want %v, got %v (%+v)", tc.code, tc.want, out.Status, out)
		}
		if out.HTTPStatus != tc.code {
			t.Fatalf("code %d: HTTPStatus=%d", tc.code, out.HTTPStatus)
		}
	}
}

func TestStoreProber_URL(t *testing.T) {
	p := NewStoreProber("https://apps.apple.com", 0)
	got := p.URL("id123", "de")
	if got != "https://apps.apple.com/de/app/id123" {
		t.Fatalf("url: %s", got)
	}
}

func TestStoreProber_TransportErrorIsIndeterminate(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	p := NewStoreProber(s.URL, 50*time.Millisecond)
	out := p.Probe(context.Background(), "id1", "us")
	if out.Status != StatusIndeterminate {
		t.Fatalf("want indeterminate on timeout, got %+v", out)
	}
	if out.HTTPStatus != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.HTTPStatus)
	}
	if out.Message == "" {
		t.Fatalf("want non-empty error message")
	}
}
