// Package driver couples an interpreter to a presentation clock or runs
// it free when there is nothing to present to.
package driver

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Frame rate limits. Rates outside [1, MaxFPS] fall back to DefaultFPS.
const (
	DefaultFPS = 60
	MaxFPS     = 240
)

// Machine executes one instruction per Step and reports when it halted.
// Steps counts the instructions executed so far.
type Machine interface {
	Step() (halted bool, err error)
	Steps() int
}

// Surface is the presentation target polled once per loop iteration.
type Surface interface {
	ShouldClose() bool
	PollEvents()
	PresentFrame()
	Now() time.Time
}

// Waiter is implemented by surfaces that can block until the next frame
// is due instead of letting the loop spin.
type Waiter interface {
	WaitUntil(t time.Time)
}

type Mode string

const (
	ModeHeadless     Mode = "headless"
	ModePresentation Mode = "presentation"
)

// Stats summarizes a finished run.
type Stats struct {
	Mode         Mode
	Instructions int
	Frames       int
	Closed       bool // presentation stopped by the surface
}

// Driver runs a Machine in headless or presentation mode
type Driver struct {
	m      Machine
	logger *log.Logger
}

type Option func(*Driver)

// WithLogger sets the logger used for run events
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New creates a driver for m
func New(m Machine, opts ...Option) *Driver {
	d := &Driver{m: m}
	for _, o := range opts {
		o(d)
	}

	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}

	return d
}

// FrameInterval returns the time between two instructions at fps
func FrameInterval(fps int) time.Duration {
	if fps < 1 || fps > MaxFPS {
		fps = DefaultFPS
	}

	return time.Second / time.Duration(fps)
}

// RunHeadless steps the machine until it halts, fails or ctx is done.
func (d *Driver) RunHeadless(ctx context.Context) (Stats, error) {
	stats := Stats{Mode: ModeHeadless}
	start := d.m.Steps()

	for {
		if err := ctx.Err(); err != nil {
			stats.Instructions = d.m.Steps() - start
			return stats, err
		}

		halted, err := d.m.Step()
		stats.Instructions = d.m.Steps() - start
		if err != nil {
			return stats, err
		}
		if halted {
			d.logger.Debug("halted", "mode", stats.Mode, "instructions", stats.Instructions)
			return stats, nil
		}
	}
}

// RunPresentation executes at most one instruction per frame interval.
// Every iteration presents a frame and polls the surface. The loop ends
// when the surface asks to close, the machine halts, or ctx is done.
func (d *Driver) RunPresentation(ctx context.Context, s Surface, fps int) (Stats, error) {
	stats := Stats{Mode: ModePresentation}
	interval := FrameInterval(fps)
	waiter, _ := s.(Waiter)

	d.logger.Debug("presenting", "fps", fps, "interval", interval)

	start := d.m.Steps()
	last := s.Now()
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if s.ShouldClose() {
			stats.Closed = true
			d.logger.Debug("surface closed", "instructions", stats.Instructions, "frames", stats.Frames)
			return stats, nil
		}

		now := s.Now()
		if now.Sub(last) >= interval {
			last = now

			halted, err := d.m.Step()
			stats.Instructions = d.m.Steps() - start
			if err != nil {
				return stats, err
			}
			if halted {
				s.PresentFrame()
				stats.Frames++
				d.logger.Debug("halted", "mode", stats.Mode, "instructions", stats.Instructions, "frames", stats.Frames)
				return stats, nil
			}
		}

		s.PresentFrame()
		s.PollEvents()
		stats.Frames++

		if waiter != nil {
			waiter.WaitUntil(last.Add(interval))
		}
	}
}
