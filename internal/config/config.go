// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for server and simulation settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      int
	DebugPort int // localhost-only metrics/pprof server, 0 disables
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:      3000,
		DebugPort: 6060,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", -1); p >= 0 {
		cfg.DebugPort = p
	}

	return cfg
}

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig selects the scenario the server boots into.
type SimConfig struct {
	Preset    string // scenario preset name
	Seed      int64  // 0 means derive from wall clock
	Workers   int    // force solver goroutines, values <= 1 run sequentially
	AuditPath string // NDJSON event log path, empty disables persistence
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		Preset:    "calm-belts",
		AuditPath: "events.ndjson",
	}
}

// SimFromEnv returns simulation configuration with environment variable overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if p := os.Getenv("SIM_PRESET"); p != "" {
		cfg.Preset = p
	}
	if s := getEnvInt64("SIM_SEED", 0); s != 0 {
		cfg.Seed = s
	}
	if w := getEnvInt("SIM_WORKERS", 0); w > 0 {
		cfg.Workers = w
	}
	if p, ok := os.LookupEnv("AUDIT_PATH"); ok {
		cfg.AuditPath = p
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and performance limits.
type ResourceLimits struct {
	MaxBodies        int // Hard cap on registered bodies
	MaxEventsPerTick int // Events retained per tick
	MaxBurstCount    int // Bodies per burst intent
	MaxIntentQueue   int // Queued intents per tick
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxBodies:        50_000,
		MaxEventsPerTick: 4096,
		MaxBurstCount:    500,
		MaxIntentQueue:   256,
	}
}

// LimitsFromEnv returns resource limits with environment variable overrides.
func LimitsFromEnv() ResourceLimits {
	cfg := DefaultLimits()

	if n := getEnvInt("MAX_BODIES", 0); n > 0 {
		cfg.MaxBodies = n
	}
	if n := getEnvInt("MAX_BURST_COUNT", 0); n > 0 {
		cfg.MaxBurstCount = n
	}

	return cfg
}

// =============================================================================
// FRAME RENDERING CONFIGURATION
// =============================================================================

// FrameConfig holds settings for the PNG frame endpoint.
type FrameConfig struct {
	Width  int // Frame width in pixels
	Height int // Frame height in pixels
	Scale  float64
}

// DefaultFrame returns the default frame configuration.
func DefaultFrame() FrameConfig {
	return FrameConfig{
		Width:  1280,
		Height: 720,
		Scale:  0.15, // pixels per world unit
	}
}

// FrameFromEnv returns frame configuration with environment variable overrides.
func FrameFromEnv() FrameConfig {
	cfg := DefaultFrame()

	if w := getEnvInt("FRAME_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("FRAME_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if s := getEnvFloat("FRAME_SCALE", 0); s > 0 {
		cfg.Scale = s
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server ServerConfig
	Sim    SimConfig
	Limits ResourceLimits
	Frame  FrameConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server: ServerFromEnv(),
		Sim:    SimFromEnv(),
		Limits: LimitsFromEnv(),
		Frame:  FrameFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
