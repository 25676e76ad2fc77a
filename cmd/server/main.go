package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gravwell/internal/api"
	"gravwell/internal/config"
	"gravwell/internal/render"
	"gravwell/internal/sim"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	serverCfg := appConfig.Server
	simCfg := appConfig.Sim

	// Scenario: preset + seed define the whole run
	seed := simCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	scenario := sim.NewScenario(sim.Preset(simCfg.Preset), seed)
	if err := scenario.Validate(); err != nil {
		log.Fatalf("invalid scenario: %v", err)
	}

	limits := sim.DefaultLimits
	limits.MaxBodies = appConfig.Limits.MaxBodies
	limits.MaxSnapshotBodies = appConfig.Limits.MaxBodies
	limits.MaxEventsPerTick = appConfig.Limits.MaxEventsPerTick
	limits.MaxBurstCount = appConfig.Limits.MaxBurstCount
	limits.MaxIntentQueue = appConfig.Limits.MaxIntentQueue

	engine := sim.NewEngine(scenario, limits)
	log.Printf("scenario: preset=%s seed=%d mission=%s target=%g",
		scenario.Preset, scenario.Seed, scenario.Mission.Objective, scenario.Mission.Target)
	log.Printf("resource limits: %d bodies, %d events/tick, %d burst, %d intents",
		limits.MaxBodies, limits.MaxEventsPerTick, limits.MaxBurstCount, limits.MaxIntentQueue)

	// Worker override for the force solver
	if simCfg.Workers > 0 {
		s := engine.Settings()
		s.Workers = simCfg.Workers
		if err := engine.UpdateSettings(s); err != nil {
			log.Fatalf("invalid worker settings: %v", err)
		}
	}

	// Audit log persistence
	if simCfg.AuditPath != "" {
		if err := engine.AuditLog().Start(simCfg.AuditPath); err != nil {
			log.Printf("audit log disabled: %v", err)
		} else {
			log.Printf("audit log: %s", simCfg.AuditPath)
		}
	}

	// Metrics: tick observer feeds the histograms and gauges
	engine.SetTickObserver(func(elapsed time.Duration, bodies int) {
		api.RecordTick(elapsed)
		api.UpdateBodyCount(bodies)
		snap := engine.Snapshot()
		api.UpdateHazardCount(snap.HazardCount)
	})

	// Debug server (localhost only)
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" && serverCfg.DebugPort != 0 {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = "127.0.0.1:" + strconv.Itoa(serverCfg.DebugPort)
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	renderer := render.NewRenderer(render.Config{
		Width:  appConfig.Frame.Width,
		Height: appConfig.Frame.Height,
		Scale:  appConfig.Frame.Scale,
	})

	server := api.NewServer(engine, renderer)

	engine.Start()

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Mirror audit log counters into metrics
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := engine.AuditLog().Stats()
			api.UpdateAuditLogStats(stats["total"], stats["dropped"])
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down...")
	server.Stop()
	engine.Stop()
	engine.AuditLog().Stop()
}
