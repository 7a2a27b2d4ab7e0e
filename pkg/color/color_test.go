package color_test

import (
	"strings"
	"testing"

	"golden/pkg/color"
)

func TestErrorWithPosition(t *testing.T) {
	defer color.EnableColor(color.IsColorEnabled())

	color.EnableColor(false)
	got := color.ErrorWithPosition(3, 7, "undefined global \"x\"", "get_global x")
	if want := "Error at 3:7: undefined global \"x\"\nget_global x"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	color.EnableColor(true)
	got = color.ErrorWithPosition(3, 7, "boom", "line")
	if !strings.Contains(got, color.Reset) || !strings.Contains(got, "3:7") {
		t.Errorf("expected colored output, got %q", got)
	}
}

func TestColorize(t *testing.T) {
	defer color.EnableColor(color.IsColorEnabled())

	color.EnableColor(false)
	if got := color.GreenText("ok"); got != "ok" {
		t.Errorf("expected plain text, got %q", got)
	}

	color.EnableColor(true)
	if got := color.GreenText("ok"); got != color.Green+"ok"+color.Reset {
		t.Errorf("unexpected colored text %q", got)
	}
}
