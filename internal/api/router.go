// Package api serves the album identification engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sydlexius/albumlink/internal/api/middleware"
	"github.com/sydlexius/albumlink/internal/detect"
	"github.com/sydlexius/albumlink/internal/identify"
	"github.com/sydlexius/albumlink/internal/logging"
	"github.com/sydlexius/albumlink/internal/page"
)

// Identifier is the identification pipeline behind the API.
type Identifier interface {
	Detect(ctx context.Context, pageURL string) (*detect.Candidate, error)
	DetectPage(p page.Page) *detect.Candidate
	IdentifyURL(ctx context.Context, pageURL string) (*identify.Outcome, error)
	IdentifyPage(ctx context.Context, p page.Page) *identify.Outcome
	Search(ctx context.Context, artist, album string) *identify.Outcome
	SearchQuery(ctx context.Context, query string) *identify.Outcome
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Identifier     Identifier
	LogManager     *logging.Manager
	Logger         *slog.Logger
	BasePath       string
	RateLimit      float64
	RateBurst      int
	AllowedOrigins []string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	identifier     Identifier
	logManager     *logging.Manager
	logger         *slog.Logger
	basePath       string
	rateLimit      float64
	rateBurst      int
	allowedOrigins []string
}

// NewRouter creates a new Router.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		identifier:     deps.Identifier,
		logManager:     deps.LogManager,
		logger:         deps.Logger.With(slog.String("component", "api")),
		basePath:       deps.BasePath,
		rateLimit:      deps.RateLimit,
		rateBurst:      deps.RateBurst,
		allowedOrigins: deps.AllowedOrigins,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
// ctx bounds the rate limiter's background cleanup.
func (r *Router) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath
	limited := middleware.NewIPRateLimiter(ctx, r.rateLimit, r.rateBurst).Middleware

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)

	// Identification routes
	mux.Handle("POST "+bp+"/api/v1/detect", limited(http.HandlerFunc(r.handleDetect)))
	mux.Handle("POST "+bp+"/api/v1/search", limited(http.HandlerFunc(r.handleSearch)))
	mux.Handle("POST "+bp+"/api/v1/identify", limited(http.HandlerFunc(r.handleIdentify)))

	// Logging routes
	mux.HandleFunc("GET "+bp+"/api/v1/settings/logging", r.handleGetLogging)
	mux.HandleFunc("PUT "+bp+"/api/v1/settings/logging", r.handleUpdateLogging)

	var h http.Handler = mux
	h = middleware.CORS(r.allowedOrigins)(h)
	h = middleware.SecurityHeaders(h)
	return middleware.Logging(r.logger)(h)
}
