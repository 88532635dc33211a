// Package live previews a vskia scene in an Ebitengine window, replaying a
// script step by step and cross-fading between successive renders.
package live

import (
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/vskia"
)

// Config holds window and playback settings.
type Config struct {
	Title  string
	Width  int // window size used until the root defines a canvas
	Height int
	// StepFrames is the number of ticks between script steps.
	StepFrames int
	// Fade is the cross-fade duration after each re-render.
	Fade time.Duration
}

// Viewer implements ebiten.Game.
type Viewer struct {
	inst *vskia.Instance
	seq  *sequencer
	fade fade
	cfg  Config
	log  *zap.Logger

	prev, cur *ebiten.Image
	dirty     bool
}

// NewViewer returns a viewer that applies steps to inst over time.
func NewViewer(inst *vskia.Instance, steps []vskia.Step, cfg Config, log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}
	return &Viewer{
		inst:  inst,
		seq:   newSequencer(steps, cfg.StepFrames),
		fade:  fade{alpha: 1},
		cfg:   cfg,
		log:   log,
		dirty: true,
	}
}

// Update applies the step due this tick and advances the fade.
func (v *Viewer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	v.fade.update(float32(1.0 / float64(ebiten.TPS())))

	if st, ok := v.seq.tick(); ok {
		if err := v.inst.ApplyStep(st); err != nil {
			return fmt.Errorf("live: %w", err)
		}
		v.dirty = true
		if v.seq.done() {
			v.log.Info("script finished")
		}
	}
	if v.dirty {
		v.refresh()
		v.dirty = false
	}
	return nil
}

// refresh re-renders the scene and starts a fade from the previous frame.
func (v *Viewer) refresh() {
	img := v.inst.Render()
	if v.prev != nil {
		v.prev.Deallocate()
	}
	v.prev = v.cur
	v.cur = nil
	if !img.Bounds().Empty() {
		v.cur = ebiten.NewImageFromImage(img)
	}
	v.fade.start(float32(v.cfg.Fade.Seconds()))
}

// Draw blends the previous frame out and the current one in.
func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.prev != nil && v.fade.active() {
		var op ebiten.DrawImageOptions
		op.ColorScale.ScaleAlpha(1 - v.fade.alpha)
		screen.DrawImage(v.prev, &op)
	}
	if v.cur != nil {
		var op ebiten.DrawImageOptions
		op.ColorScale.ScaleAlpha(v.fade.alpha)
		screen.DrawImage(v.cur, &op)
	}
}

// Layout uses the root canvas size once the root has a Rect shape.
func (v *Viewer) Layout(_, _ int) (int, int) {
	return canvasSize(vskia.CanvasBounds(v.inst.Tree()), v.cfg)
}

func canvasSize(b image.Rectangle, cfg Config) (int, int) {
	if b.Empty() {
		return cfg.Width, cfg.Height
	}
	return b.Dx(), b.Dy()
}

// Run opens a window and blocks until it is closed.
func Run(v *Viewer) error {
	w, h := canvasSize(vskia.CanvasBounds(v.inst.Tree()), v.cfg)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(v.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
