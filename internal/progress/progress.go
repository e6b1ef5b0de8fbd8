// Package progress renders carriage-return console progress meters.
// The displayed fraction is spring-smoothed toward the reported one so
// bursty progress reports still animate smoothly.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
)

// meterFPS is the redraw rate of a running meter.
const meterFPS = 30

// barWidth is the number of cells in the drawn bar.
const barWidth = 40

// Meter is a single-line console progress bar.
type Meter struct {
	mu     sync.Mutex
	w      io.Writer
	label  string
	spring harmonica.Spring
	shown  float64 // displayed fraction, chases target
	vel    float64 // spring velocity
	target float64

	stop chan struct{}
	done chan struct{}
}

// NewMeter creates a meter writing to w with the given label.
func NewMeter(w io.Writer, label string) *Meter {
	return &Meter{
		w:     w,
		label: label,
		// Critically damped so the bar never overshoots the target.
		spring: harmonica.NewSpring(harmonica.FPS(meterFPS), 8.0, 1.0),
	}
}

// SetPercent reports progress as a 0..100 percentage.
func (m *Meter) SetPercent(pct int) {
	m.SetFraction(float64(pct) / 100)
}

// Report reports progress as done out of total.
func (m *Meter) Report(done, total int) {
	if total <= 0 {
		return
	}
	m.SetFraction(float64(done) / float64(total))
}

// SetFraction reports progress as a 0..1 fraction.
func (m *Meter) SetFraction(f float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	if f > m.target {
		m.target = f
	}
}

// Tick advances the spring one step and redraws the line.
func (m *Meter) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown, m.vel = m.spring.Update(m.shown, m.vel, m.target)
	m.draw(m.shown)
}

// Start begins redrawing the meter in the background. Call Finish to
// stop it and complete the line.
func (m *Meter) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(time.Second / meterFPS)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.Tick()
			}
		}
	}(m.stop, m.done)
}

// Finish stops the background redraw, snaps the bar to done and
// terminates the line.
func (m *Meter) Finish() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown, m.vel = 1, 0
	m.target = 1
	m.draw(1)
	fmt.Fprintln(m.w)
}

// draw renders one meter line. Callers hold the lock.
func (m *Meter) draw(f float64) {
	filled := int(f*barWidth + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	fmt.Fprintf(m.w, "\r%s [%s] %3.0f%%", m.label, bar, f*100)
}
