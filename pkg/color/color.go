// Package color wraps text in ANSI colors when stdout is a terminal.
package color

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Cyan      = "\033[36m"
	Gray      = "\033[90m"
	BrightRed = "\033[91m"
)

var colorEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" || !isTerminal() {
		colorEnabled = false
	}
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}

	return os.Getenv("TERM") != "dumb"
}

func EnableColor(enable bool) {
	colorEnabled = enable
}

func IsColorEnabled() bool {
	return colorEnabled
}

func colorize(color, text string) string {
	if !colorEnabled {
		return text
	}
	return color + text + Reset
}

func GreenText(text string) string {
	return colorize(Green, text)
}

func YellowText(text string) string {
	return colorize(Yellow, text)
}

func CyanText(text string) string {
	return colorize(Cyan, text)
}

func GrayText(text string) string {
	return colorize(Gray, text)
}

func Error(message string) string {
	if !colorEnabled {
		return message
	}
	return colorize(BrightRed, "Error: ") + message
}

func Success(message string) string {
	if !colorEnabled {
		return message
	}
	return GreenText("Success: ") + message
}

func ErrorWithPosition(line, col int, message, context string) string {
	if !colorEnabled {
		return fmt.Sprintf("Error at %d:%d: %s\n%s", line, col, message, context)
	}

	return fmt.Sprintf("%s at %s: %s\n%s",
		colorize(BrightRed+Bold, "Error"),
		CyanText(fmt.Sprintf("%d:%d", line, col)),
		message,
		GrayText(context))
}
