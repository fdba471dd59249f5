package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SLASHOO/SkyMotion-Library/internal/auth"
	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
	"github.com/SLASHOO/SkyMotion-Library/internal/database"
	"github.com/SLASHOO/SkyMotion-Library/internal/docs"
	"github.com/SLASHOO/SkyMotion-Library/internal/geoip"
	"github.com/SLASHOO/SkyMotion-Library/internal/ratelimit"
	"github.com/SLASHOO/SkyMotion-Library/internal/savedmoves"
	"github.com/SLASHOO/SkyMotion-Library/internal/sessions"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	DB     database.DBTX
	Pinger Pinger
	// Catalog serves GET /v1/catalog when set.
	Catalog           catalog.ObjectReader
	CatalogKey        string
	AllowedOrigins    []string
	MemberTokenSecret string
	GeoIP             *geoip.Resolver
	EnableDocs        bool
	// TrustProxy takes the client address from X-Real-IP or X-Forwarded-For.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy bool
}

type Server struct {
	router         chi.Router
	pinger         Pinger
	authHandler    *auth.Handler
	sessionHandler *sessions.Handler
	savedHandler   *savedmoves.Handler
	catalogSource  catalog.Source
	enableDocs     bool
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(cfg.GeoIP))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(corsHandler(cfg.AllowedOrigins))

	s := &Server{router: r, pinger: cfg.Pinger, enableDocs: cfg.EnableDocs}

	if cfg.DB != nil {
		s.authHandler = auth.NewHandler(cfg.MemberTokenSecret)
		s.sessionHandler = sessions.NewHandler(cfg.DB)
		s.savedHandler = savedmoves.NewHandler(cfg.DB)
	}
	if cfg.Catalog != nil {
		s.catalogSource = &catalog.ObjectSource{Reader: cfg.Catalog, Key: cfg.CatalogKey}
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	if s.enableDocs {
		docs.Mount(s.router)
	}

	if s.catalogSource != nil {
		catalogLimiter := ratelimit.NewLimiter(1, 10)
		s.router.With(catalogLimiter.Middleware).Get("/v1/catalog", s.handleCatalog)
	}

	if s.authHandler != nil {
		sessionLimiter := ratelimit.NewLimiter(10, 40)
		s.router.Route("/v1/sessions", func(r chi.Router) {
			r.Use(s.authHandler.Middleware)
			r.Use(sessionLimiter.Middleware)
			r.Post("/", s.sessionHandler.Create)
			r.Get("/{id}", s.sessionHandler.Get)
			r.Patch("/{id}", s.sessionHandler.Patch)
			r.Post("/{id}/done", s.sessionHandler.Done)
		})

		savedLimiter := ratelimit.NewLimiter(5, 20)
		s.router.Route("/v1/saved-moves", func(r chi.Router) {
			r.Use(s.authHandler.Middleware)
			r.Use(savedLimiter.Middleware)
			r.Get("/", s.savedHandler.List)
			r.Post("/", s.savedHandler.Create)
			r.Delete("/{id}", s.savedHandler.Delete)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
