package api

import (
	"image"

	"gravwell/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the simulation engine methods used by the API.
// This interface enables mocking for tests without spinning up the tick loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// Snapshot returns the latest lock-free immutable snapshot
	Snapshot() *sim.Snapshot
	// Mission returns the current mission aggregate
	Mission() sim.Mission
	// Stats returns the current run stats
	Stats() sim.Stats
	// Settings returns the active settings
	Settings() sim.Settings
	// UpdateSettings validates and stages a settings update
	UpdateSettings(sim.Settings) error
	// Scenario returns the active scenario
	Scenario() sim.Scenario
	// SetScenario installs a new scenario and resets to it
	SetScenario(sim.Scenario) error
	// QueueIntent enqueues a player action for the next tick
	QueueIntent(sim.Intent) bool
	// Reset restarts the current scenario from tick zero
	Reset()
}

// RendererInterface rasterizes snapshots for the frame endpoint.
type RendererInterface interface {
	Render(snap *sim.Snapshot) image.Image
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the simulation engine (required)
	Engine EngineInterface

	// Renderer provides PNG frames. If nil, /api/frame returns 503.
	Renderer RendererInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default production origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
// This is used internally to pass handlers to route setup.
type routerHandlers struct {
	engine   EngineInterface
	renderer RendererInterface
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//   - No background workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Create handlers struct
	h := &routerHandlers{
		engine:   cfg.Engine,
		renderer: cfg.Renderer,
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Simulation state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/mission", h.handleGetMission)
		r.Get("/events", h.handleGetEvents)

		// Tuning
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handlePutSettings)
		r.Get("/scenario", h.handleGetScenario)
		r.Put("/scenario", h.handlePutScenario)

		// Player intents
		r.Post("/intent/thrust", h.handleIntentThrust)
		r.Post("/intent/burst", h.handleIntentBurst)
		r.Post("/reset", h.handleReset)

		// Presentation
		r.Get("/frame", h.handleGetFrame)
	})

	return r
}
