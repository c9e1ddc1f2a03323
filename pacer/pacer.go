// Package pacer maps wall-clock time onto logical frame indices so playback
// from a recorded dataset can emulate a live sensor's frame rate.
package pacer

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

// StartFrame is the frame index before the first advance.
const StartFrame = -1

// A Pacer decides which frame index "should" be current at this instant and,
// in blocking mode, sleeps until that instant arrives.
//
// With a zero target rate the index simply increments once per call, as fast
// as the caller can go. With a positive rate the index is derived from the
// time elapsed since the first advance, so a caller running slower than real
// time skips indices and a fast non-blocking caller revisits the current one.
type Pacer struct {
	clk      clock.Clock
	fps      int
	blocking bool

	epoch time.Time
	frame int
}

// New returns a pacer against the system clock. fps of 0 disables throttling.
func New(fps int, blocking bool) *Pacer {
	return NewWithClock(fps, blocking, clock.New())
}

// NewWithClock returns a pacer against the given clock.
func NewWithClock(fps int, blocking bool, clk clock.Clock) *Pacer {
	return &Pacer{clk: clk, fps: fps, blocking: blocking, frame: StartFrame}
}

// Advance computes the next frame index and returns it. In blocking mode it
// sleeps until the returned index is due.
func (p *Pacer) Advance() int {
	if p.fps == 0 {
		p.frame++
		return p.frame
	}

	now := p.clk.Now()
	if p.epoch.IsZero() {
		p.epoch = now
	}
	elapsed := now.Sub(p.epoch).Seconds()
	p.frame = int(math.Ceil(elapsed * float64(p.fps)))

	if p.blocking {
		due := p.epoch.Add(time.Duration(float64(p.frame) / float64(p.fps) * float64(time.Second)))
		if wait := due.Sub(now); wait > 0 {
			p.clk.Sleep(wait)
		}
	}
	return p.frame
}

// Frame returns the current frame index, StartFrame before the first advance.
func (p *Pacer) Frame() int {
	return p.frame
}

// Reset rewinds the pacer to the pre-first-frame state. The epoch is cleared
// so the next advance starts a fresh playback timeline.
func (p *Pacer) Reset() {
	p.frame = StartFrame
	p.epoch = time.Time{}
}
