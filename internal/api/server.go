package api

import (
	"log"
	"net/http"

	"gravwell/internal/sim"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with a WebSocket hub for real-time snapshots.
type Server struct {
	engine      *sim.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine *sim.Engine, renderer RendererInterface) *Server {
	s := &Server{
		engine: engine,
		wsHub:  NewWebSocketHub(),
	}

	// Create rate limiter (we track it for potential cleanup)
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	// Build router using the factory
	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Renderer:    renderer,
		RateLimiter: s.rateLimiter,
	})

	// Add WebSocket routes (these need the wsHub instance)
	s.router.Get("/ws", s.handleWS)

	return s
}

// Start begins the HTTP server AND starts background workers.
// This is the ONLY method that starts goroutines or opens network listeners.
//
// Call this method only once. To stop the server, signal the process.
func (s *Server) Start(addr string) error {
	// Start background workers NOW, not in constructor
	// This is critical for testability - tests can construct the server
	// and use Router() without these workers running.
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.engine)

	log.Printf("api server starting on %s", addr)

	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
// Call this before process exit to ensure clean cleanup.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
