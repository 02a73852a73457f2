package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/httpapi/middleware"
	"github.com/okunev/appwatch/internal/registry"
	"github.com/okunev/appwatch/internal/repo"
)

type Server struct {
	Logger   *zap.Logger
	Apps     repo.AppStore
	Registry *registry.Registry
	APIKeys  []string
}

func NewServer(l *zap.Logger, apps repo.AppStore, reg *registry.Registry, keys []string) *Server {
	return &Server{Logger: l, Apps: apps, Registry: reg, APIKeys: keys}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireKey(s.APIKeys))
		r.Get("/api/apps", s.handleListApps)
		r.Get("/api/destinations", s.handleListDestinations)
		r.Post("/api/destinations", s.handleAddDestination)
	})

	return r
}

type appView struct {
	AppID     string   `json:"app_id"`
	Name      string   `json:"name"`
	Regions   []string `json:"regions"`
	Available bool     `json:"available"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

func (s *Server) handleListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := s.Apps.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	out := make([]appView, 0, len(apps))
	for _, a := range apps {
		v := appView{AppID: a.AppID, Name: a.Name, Regions: a.Regions, Available: a.Available}
		if !a.UpdatedAt.IsZero() {
			v.UpdatedAt = a.UpdatedAt.UTC().Format("2006-01-02 15:04:05")
		}
		out = append(out, v)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleListDestinations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Registry.List())
}

type addPayload struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

func (s *Server) handleAddDestination(w http.ResponseWriter, r *http.Request) {
	var p addPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.URL == "" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if u, err := url.Parse(p.URL); err != nil || u.Scheme == "" || u.Host == "" {
		http.Error(w, "bad url", http.StatusBadRequest)
		return
	}

	d := domain.Destination{Channel: domain.ChannelWebhook, ID: p.URL, Label: p.Label}
	created, err := s.Registry.Register(r.Context(), d)
	if err != nil {
		http.Error(w, "could not register", http.StatusInternalServerError)
		return
	}

	s.Logger.Info("added_destination",
		zap.String("url", p.URL),
		zap.Bool("new", created),
	)

	w.Header().Set("Content-Type", "application/json")
	if created {
		w.WriteHeader(http.StatusCreated)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"destination": d, "created": created,
	})
}
