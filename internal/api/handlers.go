package api

import (
	"encoding/json"
	"image/png"
	"net/http"
	"time"

	"gravwell/internal/sim"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	// Lock-free snapshot: no engine mutex contention on the poll path.
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, map[string]interface{}{
		"stats":       snap.Stats,
		"tick":        snap.Tick,
		"bodyCount":   snap.BodyCount,
		"hazardCount": snap.HazardCount,
		"state":       snap.State,
	})
}

func (h *routerHandlers) handleGetMission(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Mission())
}

func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, map[string]interface{}{
		"tick":   snap.Tick,
		"events": snap.Events,
	})
}

func (h *routerHandlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Settings())
}

func (h *routerHandlers) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	// Decode over the active settings so omitted fields keep their values.
	s := h.engine.Settings()
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.engine.UpdateSettings(s); err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, s)
}

func (h *routerHandlers) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Scenario())
}

func (h *routerHandlers) handlePutScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset string `json:"preset"`
		Seed   int64  `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sc := sim.NewScenario(sim.Preset(req.Preset), seed)
	if err := h.engine.SetScenario(sc); err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, sc)
}

func (h *routerHandlers) handleIntentThrust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Boost bool    `json:"boost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.X == 0 && req.Y == 0 {
		writeError(w, "Thrust direction is required", http.StatusBadRequest)
		return
	}

	ok := h.engine.QueueIntent(sim.Intent{
		Kind:   sim.IntentThrust,
		Thrust: sim.Vec2{X: req.X, Y: req.Y},
		Boost:  req.Boost,
	})
	if !ok {
		writeError(w, "Intent queue full", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]bool{"queued": true})
}

func (h *routerHandlers) handleIntentBurst(w http.ResponseWriter, r *http.Request) {
	var req sim.BurstIntent
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 || req.Radius <= 0 || req.BaseMass <= 0 {
		writeError(w, "Burst requires positive count, radius and baseMass", http.StatusBadRequest)
		return
	}

	ok := h.engine.QueueIntent(sim.Intent{Kind: sim.IntentBurst, Burst: req})
	if !ok {
		writeError(w, "Intent queue full", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]bool{"queued": true})
}

func (h *routerHandlers) handleReset(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "Frame rendering disabled", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	img := h.renderer.Render(h.engine.Snapshot())
	RecordRender(time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	png.Encode(w, img)
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
