package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const requestTimeout = 30 * time.Second

// RouterConfig holds the transport settings of the router.
// Admin routes are mounted only when AuthEnabled is set.
// Events, if non-nil, is mounted at GET /api/events.
// StaticDir, if non-empty, is served at /static/*.
type RouterConfig struct {
	AuthEnabled    bool
	Token          string
	AllowedOrigins []string
	Development    bool
	StaticDir      string
	Events         http.Handler
}

// NewRouter creates a chi router with all routes mounted.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(h.d.Logger))
	r.Use(RecoverMiddleware(h.d.Logger, cfg.Development))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	if cfg.StaticDir != "" {
		r.Get("/static/*", NewStaticHandler(cfg.StaticDir).ServeFile)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			// Catalog.
			r.Get("/artworks", h.ListArtworks)
			r.Get("/artworks/preview", h.PreviewArtworks)
			r.Get("/artworks/{id}", h.GetArtwork)
			r.Get("/workshops", h.ListWorkshops)
			r.Get("/workshops/upcoming", h.UpcomingWorkshops)
			r.Get("/workshops/{slug}", h.GetWorkshop)

			// Artwork viewer.
			r.Get("/viewer", h.GetViewer)
			r.Post("/viewer/list/open", h.OpenList)
			r.Post("/viewer/list/close", h.CloseList)
			r.Put("/viewer/filter", h.SetViewerFilter)
			r.Post("/viewer/select", h.SelectArtwork)
			r.Post("/viewer/navigate", h.Navigate)
			r.Post("/viewer/close", h.CloseViewer)

			// Contact form.
			r.Get("/contact", h.GetContact)
			r.Post("/contact", h.SubmitContact)
			r.Post("/contact/reset", h.ResetContact)
		})

		// Long-lived streams.
		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
		r.Get("/effects/ws", h.EffectsStream(origins))

		// The submission log holds visitors' personal data, so admin routes
		// exist only behind a token.
		if cfg.AuthEnabled {
			r.Route("/admin", func(r chi.Router) {
				r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))
				r.Post("/reload", h.Reload)
				r.Get("/submissions", h.ListSubmissions)
			})
		}
	})

	return r
}
