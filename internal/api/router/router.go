package router

import (
	"net/http"

	"github.com/fortis-steel/chatbot-api/internal/chat"
	httpmiddleware "github.com/fortis-steel/chatbot-api/internal/http/middleware"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	ChatHandler    *chat.Handler
	MetricsHandler http.Handler
	CORS           httpmiddleware.CORSPolicy
	// StaticDir is served under /static/ when set (widget.js and friends).
	StaticDir string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(cfg.CORS.Origins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORS))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	h := cfg.ChatHandler

	// The socket needs the raw connection, so it stays out of the compressed group.
	r.Get("/chat/ws", h.HandleWebSocket)

	r.Group(func(public chi.Router) {
		public.Use(middleware.Compress(5))

		public.Get("/", h.HandleRoot)
		public.Get("/health", h.HandleHealth)
		public.Head("/health", h.HandleHealth)
		public.Post("/chat", h.HandleChat)

		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.StaticDir != "" {
			fs := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
			public.Handle("/static/*", fs)
		}
	})

	return r
}
