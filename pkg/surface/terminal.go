// Package surface provides presentation targets for the frame-paced driver.
package surface

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Terminal presents program output on a terminal. Output written through
// Writer is buffered and shown when a frame is presented. The surface asks
// to close once ctx is done or the process receives an interrupt.
type Terminal struct {
	out    *bufio.Writer
	ctx    context.Context
	stop   context.CancelFunc
	closed bool
	err    error
}

// NewTerminal creates a surface writing to w. When w is a terminal its
// window title is set to title.
func NewTerminal(ctx context.Context, w io.Writer, title string) *Terminal {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) && title != "" {
		termenv.NewOutput(f).SetWindowTitle(title)
	}

	return &Terminal{
		out:  bufio.NewWriter(w),
		ctx:  ctx,
		stop: stop,
	}
}

// Writer returns the buffered program output
func (t *Terminal) Writer() io.Writer {
	return t.out
}

func (t *Terminal) ShouldClose() bool {
	return t.closed
}

func (t *Terminal) PollEvents() {
	select {
	case <-t.ctx.Done():
		t.closed = true
	default:
	}
}

// PresentFrame shows the output buffered since the last frame. A failed
// write closes the surface; the error is kept for Err and Close.
func (t *Terminal) PresentFrame() {
	if err := t.out.Flush(); err != nil && t.err == nil {
		t.err = fmt.Errorf("present frame: %w", err)
		t.closed = true
	}
}

// Err returns the first output failure
func (t *Terminal) Err() error {
	return t.err
}

func (t *Terminal) Now() time.Time {
	return time.Now()
}

// WaitUntil sleeps until deadline or until the surface is asked to close
func (t *Terminal) WaitUntil(deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-t.ctx.Done():
		t.closed = true
	}
}

// Close flushes pending output and releases the interrupt handler
func (t *Terminal) Close() error {
	t.stop()
	if t.err != nil {
		return t.err
	}

	return t.out.Flush()
}
