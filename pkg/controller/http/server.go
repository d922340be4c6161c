package http

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/usecase"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
)

type Server struct {
	router   *chi.Mux
	gw       interfaces.Gateway
	ws       *usecase.Workspace
	apiToken string
	validate *validator.Validate
	pages    *template.Template
}

type Options func(*Server)

// WithAPI mounts the JSON project store API at /api, served from gw
func WithAPI(gw interfaces.Gateway) Options {
	return func(s *Server) {
		s.gw = gw
	}
}

// WithAPIToken requires "Authorization: Bearer <token>" on every API request
func WithAPIToken(token string) Options {
	return func(s *Server) {
		s.apiToken = token
	}
}

// WithWorkspace serves the HTML dashboard and project pages
func WithWorkspace(ws *usecase.Workspace) Options {
	return func(s *Server) {
		s.ws = ws
	}
}

func New(opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if s.gw != nil {
		r.Route("/api", func(r chi.Router) {
			if s.apiToken != "" {
				r.Use(bearerAuth(s.apiToken))
			}
			s.mountAPI(r)
		})
	}

	if s.ws != nil {
		pages, err := parsePages()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse page templates")
		}
		s.pages = pages
		s.mountPages(r)
	}

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
