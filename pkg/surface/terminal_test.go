package surface_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"golden/pkg/bytecode"
	"golden/pkg/driver"
	"golden/pkg/surface"
	"golden/pkg/vm"
)

var (
	_ driver.Surface = (*surface.Terminal)(nil)
	_ driver.Waiter  = (*surface.Terminal)(nil)
)

func TestTerminalBuffersUntilPresent(t *testing.T) {
	var buf bytes.Buffer
	term := surface.NewTerminal(context.Background(), &buf, "Demo")
	defer term.Close()

	_, _ = io.WriteString(term.Writer(), "frame")
	if buf.Len() != 0 {
		t.Errorf("output shown before the frame was presented: %q", buf.String())
	}

	term.PresentFrame()
	if buf.String() != "frame" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTerminalShowsProgramOutputPerFrame(t *testing.T) {
	img := &bytecode.Image{
		Strings: []string{"one", "two"},
		Code: []bytecode.Instruction{
			{Op: bytecode.OpPrintln, Arg1: 0},
			{Op: bytecode.OpPrintln, Arg1: 1},
		},
	}

	var buf bytes.Buffer
	term := surface.NewTerminal(context.Background(), &buf, "")
	defer term.Close()

	it, err := vm.NewInterpreter(img, vm.WithWriter(term.Writer()))
	if err != nil {
		t.Fatalf("NewInterpreter failed: %v", err)
	}

	if _, err := it.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output shown mid-frame: %q", buf.String())
	}

	term.PresentFrame()
	if buf.String() != "one\n" {
		t.Errorf("unexpected first frame %q", buf.String())
	}

	if _, err := it.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	term.PresentFrame()
	if buf.String() != "one\ntwo\n" {
		t.Errorf("unexpected second frame %q", buf.String())
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestTerminalPresentFailureCloses(t *testing.T) {
	term := surface.NewTerminal(context.Background(), brokenWriter{}, "")

	_, _ = io.WriteString(term.Writer(), "lost")
	term.PresentFrame()

	if !term.ShouldClose() {
		t.Errorf("surface still open after a failed frame")
	}
	if term.Err() == nil {
		t.Errorf("expected the present failure to be kept")
	}
	if err := term.Close(); err == nil || !errors.Is(err, term.Err()) {
		t.Errorf("expected Close to report the present failure, got %v", err)
	}
}

func TestTerminalClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	term := surface.NewTerminal(ctx, io.Discard, "")
	defer term.Close()

	term.PollEvents()
	if term.ShouldClose() {
		t.Fatalf("surface closed before cancellation")
	}

	cancel()
	term.PollEvents()
	if !term.ShouldClose() {
		t.Errorf("surface did not close after cancellation")
	}
}

func TestTerminalWaitUntil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	term := surface.NewTerminal(ctx, io.Discard, "")
	defer term.Close()

	start := time.Now()
	term.WaitUntil(start.Add(-time.Second))
	if time.Since(start) > 100*time.Millisecond {
		t.Errorf("waiting for a past deadline blocked")
	}

	term.WaitUntil(time.Now().Add(5 * time.Millisecond))
	if term.ShouldClose() {
		t.Errorf("short wait closed the surface")
	}

	cancel()
	start = time.Now()
	term.WaitUntil(start.Add(time.Hour))
	if time.Since(start) > time.Second {
		t.Errorf("wait was not interrupted by cancellation")
	}
	if !term.ShouldClose() {
		t.Errorf("surface did not close after an interrupted wait")
	}
}
