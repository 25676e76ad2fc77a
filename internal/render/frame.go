// Package render rasterizes simulation snapshots for the frame endpoint.
package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gravwell/internal/sim"

	"github.com/fogleman/gg"
)

// Config sizes the output frame and sets the world-to-pixel scale.
type Config struct {
	Width  int
	Height int
	Scale  float64 // pixels per world unit
}

// DefaultConfig covers the default presets' play area at 720p.
func DefaultConfig() Config {
	return Config{Width: 1280, Height: 720, Scale: 0.15}
}

var classColors = map[string]color.RGBA{
	"asteroid":   {150, 150, 160, 255},
	"planet":     {86, 156, 214, 255},
	"star":       {255, 200, 80, 255},
	"black_hole": {120, 40, 160, 255},
}

// Renderer draws snapshots onto a reused canvas. Safe for sequential use
// from the HTTP handler; a mutex serializes concurrent frame requests.
type Renderer struct {
	mu  sync.Mutex
	cfg Config
	dc  *gg.Context
}

func NewRenderer(cfg Config) *Renderer {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultConfig().Scale
	}
	return &Renderer{
		cfg: cfg,
		dc:  gg.NewContext(cfg.Width, cfg.Height),
	}
}

// Render draws the snapshot centered on the player (or the origin when no
// player is present) and returns the finished image. The returned image is
// only valid until the next Render call.
func (r *Renderer) Render(snap *sim.Snapshot) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := r.dc
	w := float64(r.cfg.Width)
	h := float64(r.cfg.Height)

	var cx, cy float64
	if snap.PlayerIndex >= 0 && snap.PlayerIndex < len(snap.Bodies) {
		p := snap.Bodies[snap.PlayerIndex]
		cx, cy = p.X, p.Y
	}

	r.drawBackground(dc)

	for i := range snap.Bodies {
		b := &snap.Bodies[i]
		px := (b.X-cx)*r.cfg.Scale + w/2
		py := (b.Y-cy)*r.cfg.Scale + h/2
		pr := b.Radius * r.cfg.Scale
		if pr < 1 {
			pr = 1
		}
		if px+pr < 0 || px-pr > w || py+pr < 0 || py-pr > h {
			continue
		}

		c, ok := classColors[b.Class]
		if !ok {
			c = color.RGBA{200, 200, 200, 255}
		}
		if b.Hazard {
			// Hazard halo
			dc.SetColor(color.RGBA{255, 62, 62, 90})
			dc.DrawCircle(px, py, pr+4)
			dc.Fill()
		}

		dc.SetColor(c)
		dc.DrawCircle(px, py, pr)
		dc.Fill()

		if b.Player {
			dc.SetColor(color.White)
			dc.SetLineWidth(2)
			dc.DrawCircle(px, py, pr+3)
			dc.Stroke()
		}
	}

	r.drawHUD(dc, snap)

	return dc.Image()
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{12, 12, 28, 255})
	dc.DrawRectangle(0, 0, float64(r.cfg.Width), float64(r.cfg.Height))
	dc.Fill()

	// Sparse static starfield, cheap and deterministic
	dc.SetColor(color.RGBA{220, 220, 235, 255})
	for i := 0; i < 40; i++ {
		x := float64((i * 67) % r.cfg.Width)
		y := float64((i * 47) % r.cfg.Height)
		dc.DrawCircle(x, y, 1)
		dc.Fill()
	}
}

func (r *Renderer) drawHUD(dc *gg.Context, snap *sim.Snapshot) {
	dc.SetColor(color.RGBA{230, 230, 240, 255})
	line := fmt.Sprintf("tick %d  bodies %d  score %.0f  x%.1f  %s",
		snap.Tick, snap.BodyCount, snap.Stats.Score, snap.Stats.Multiplier, snap.State)
	dc.DrawString(line, 12, 22)

	switch snap.State {
	case sim.RunWon:
		dc.SetColor(color.RGBA{83, 255, 69, 255})
		dc.DrawString("MISSION COMPLETE", 12, 44)
	case sim.RunLost:
		dc.SetColor(color.RGBA{255, 62, 62, 255})
		dc.DrawString("MISSION FAILED", 12, 44)
	}
}
