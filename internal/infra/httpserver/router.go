package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appai "github.com/bryanwahyu/lexilens/internal/application/ai"
	appdocs "github.com/bryanwahyu/lexilens/internal/application/documents"
	appusers "github.com/bryanwahyu/lexilens/internal/application/users"
	"github.com/bryanwahyu/lexilens/internal/config"
	domai "github.com/bryanwahyu/lexilens/internal/domain/ai"
	"github.com/bryanwahyu/lexilens/internal/domain/documents"
	"github.com/bryanwahyu/lexilens/internal/domain/users"
	"github.com/bryanwahyu/lexilens/internal/middleware"
)

const Version = "1.0.0"

// Deps is everything the HTTP surface needs.
type Deps struct {
	Users     *appusers.Service
	Documents *appdocs.Service
	AI        *appai.Service
	Tokens    middleware.TokenParser
	DB        middleware.Readiness
	// Metrics is optional; nil disables /metrics and request instrumentation.
	Metrics interface {
		middleware.HTTPRecorder
		Handler() http.Handler
	}
	Logger *slog.Logger
	Server config.Server
	Upload config.Upload
	Limit  config.RateLimit
}

type Router struct {
	d   Deps
	log *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := &Router{d: d, log: d.Logger}
	if r.log == nil {
		r.log = slog.Default()
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logging(r.log))
	mux.Use(middleware.Recover(r.log))
	if d.Metrics != nil {
		mux.Use(middleware.Metrics(d.Metrics))
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: !allowsAny(d.Server.AllowedOrigins),
		MaxAge:           300,
	}))

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteDetail(w, http.StatusNotFound, "Not Found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	mux.Get("/", r.wrap(r.handleRoot))
	mux.Get("/health", middleware.HealthHandler(d.DB, d.AI.Available))
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	var limiter func(http.Handler) http.Handler
	if d.Limit.Enabled {
		limiter = middleware.RateLimit(middleware.NewRateLimiter(d.Limit.RequestsPerSecond, d.Limit.Burst))
	}

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.RequireReady(d.DB))
		if limiter != nil {
			rt.Use(limiter)
		}
		rt.Post("/register", r.wrap(r.handleRegister))
		rt.Post("/token", r.wrap(r.handleToken))
	})

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.RequireReady(d.DB))
		rt.Use(middleware.BearerAuth(d.Tokens, d.Users))
		if limiter != nil {
			rt.Use(limiter)
		}

		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/user/documents", r.wrap(r.handleListDocuments))
		rt.Get("/documents/{id}", r.wrap(r.handleGetDocument))
		rt.Get("/documents/{id}/analyses", r.wrap(r.handleHistory))
		rt.Delete("/documents/{id}", r.wrap(r.handleDeleteDocument))
		rt.Get("/documents/{id}/suggestions", r.wrap(r.handleSuggestions))
		rt.Post("/document/{id}/query", r.wrap(r.handleQuery))
		rt.Post("/scenario/{id}", r.wrap(r.handleScenario))
		rt.Post("/negotiate-clause", r.wrap(r.handleNegotiate))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain errors to status codes in one place.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, detail := statusFor(err)
		if status >= http.StatusInternalServerError {
			r.log.Error("request failed",
				"path", req.URL.Path,
				"request_id", middleware.RequestIDFromContext(req.Context()),
				"error", err,
			)
		}
		if status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		middleware.WriteDetail(w, status, detail)
	}
}

func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, middleware.ErrInvalid),
		errors.Is(err, documents.ErrInvalidInput),
		errors.Is(err, documents.ErrBadDocument),
		errors.Is(err, users.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, users.ErrEmailTaken):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound, "Document not found"
	case errors.Is(err, domai.ErrUnavailable):
		return http.StatusServiceUnavailable, "AI service unavailable"
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "AI quota exceeded"
	case errors.Is(err, domai.ErrUpstream):
		return http.StatusBadGateway, "AI provider error"
	}
	return http.StatusInternalServerError, "internal server error"
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) error {
	return middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to LexiLens API",
		"version": Version,
	})
}

// POST /register  form: email, password
func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) error {
	u, err := r.d.Users.Register(req.Context(), req.FormValue("email"), req.FormValue("password"))
	if err != nil {
		return err
	}
	r.log.Info("user registered", "user_id", u.ID)
	return middleware.WriteJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

// POST /token  form: username, password (OAuth2 password flow)
func (r *Router) handleToken(w http.ResponseWriter, req *http.Request) error {
	token, err := r.d.Users.Login(req.Context(), req.FormValue("username"), req.FormValue("password"))
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}
