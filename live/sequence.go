package live

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/vskia"
)

// sequencer releases script steps one at a time, every frames ticks.
type sequencer struct {
	steps  []vskia.Step
	cursor int
	wait   int
	every  int
}

func newSequencer(steps []vskia.Step, every int) *sequencer {
	if every < 1 {
		every = 1
	}
	return &sequencer{steps: steps, every: every}
}

// tick advances one frame and returns the step due this frame, if any.
func (q *sequencer) tick() (vskia.Step, bool) {
	if q.cursor >= len(q.steps) {
		return vskia.Step{}, false
	}
	if q.wait > 0 {
		q.wait--
		return vskia.Step{}, false
	}
	st := q.steps[q.cursor]
	q.cursor++
	q.wait = q.every - 1
	return st, true
}

// done reports whether every step has been released.
func (q *sequencer) done() bool {
	return q.cursor >= len(q.steps)
}

// fade tracks the opacity of the newest frame while it blends over the
// previous one.
type fade struct {
	tween *gween.Tween
	alpha float32
}

// start restarts the fade from transparent. A non-positive duration shows
// the new frame at once.
func (f *fade) start(seconds float32) {
	if seconds <= 0 {
		f.tween = nil
		f.alpha = 1
		return
	}
	f.tween = gween.New(0, 1, seconds, ease.OutQuad)
	f.alpha = 0
}

// update advances the fade by dt seconds.
func (f *fade) update(dt float32) {
	if f.tween == nil {
		return
	}
	v, finished := f.tween.Update(dt)
	f.alpha = v
	if finished {
		f.alpha = 1
		f.tween = nil
	}
}

// active reports whether a fade is in progress.
func (f *fade) active() bool {
	return f.tween != nil
}
