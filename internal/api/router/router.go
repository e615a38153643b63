package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicdesk/medibot/internal/admin"
	httpmiddleware "github.com/clinicdesk/medibot/internal/http/middleware"
	"github.com/clinicdesk/medibot/internal/webchat"
	"github.com/clinicdesk/medibot/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Webchat            *webchat.Handler
	Admin              *admin.Handler
	MetricsHandler     http.Handler
	StaffAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Webchat != nil {
		r.Route("/chat", func(chat chi.Router) {
			chat.Post("/", cfg.Webchat.HandleChat)
			chat.Get("/history", cfg.Webchat.HandleHistory)
			chat.Post("/clear", cfg.Webchat.HandleClear)
			chat.Get("/ws", cfg.Webchat.HandleWebSocket)
		})
	}

	if cfg.Admin != nil {
		r.Route("/admin", func(adm chi.Router) {
			adm.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))
			adm.Get("/bookings", cfg.Admin.ListBookings)
			adm.Get("/stats", cfg.Admin.GetStats)
			adm.Post("/documents", cfg.Admin.IngestDocuments)
		})
	}

	return r
}
