package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"golden/internal/config"
	"golden/internal/logger"
	"golden/pkg/asm"
	"golden/pkg/bytecode"
	"golden/pkg/color"
	"golden/pkg/driver"
	"golden/pkg/surface"
	"golden/pkg/vm"
)

// Renderers
const (
	RendererAuto     = "auto"
	RendererTerminal = "terminal"
	RendererNone     = "none"
	RendererOpenGL   = "opengl"
)

// SourceExt marks assembler source; anything else is loaded as a bytecode image
const SourceExt = ".gasm"

var ErrUnknownRenderer = errors.New("unknown renderer")

type Launcher struct {
	Help       bool   // Show help message
	Verbose    bool   // Enable debug logging and instruction traces
	NoColor    bool   // Disable colored output
	Renderer   string // Renderer override (auto, terminal, none)
	ConfigFile string // Path to golden.toml, searched next to the image when empty
	DumpFile   string // Write a CBOR snapshot of the final state here
	OutputFile string // Output image of the asm command
	SourceFile string // Path to the image or assembler source

	Stdout io.Writer // Program and listing output, os.Stdout when nil
}

// Execute dispatches a CLI command
func (opts *Launcher) Execute(ctx context.Context, command string) error {
	switch command {
	case "run":
		return opts.Run(ctx)
	case "asm":
		return opts.Assemble()
	case "disasm":
		return opts.Disasm()
	case "inspect":
		return opts.Inspect()
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (opts *Launcher) stdout() io.Writer {
	if opts.Stdout == nil {
		return os.Stdout
	}
	return opts.Stdout
}

// LoadImage assembles .gasm sources and loads everything else as bytecode
func LoadImage(path string) (*bytecode.Image, error) {
	if strings.EqualFold(filepath.Ext(path), SourceExt) {
		return asm.AssembleFile(path)
	}

	return bytecode.LoadFile(path)
}

// ResolveRenderer maps a renderer name to terminal or none. opengl is not
// available and falls back to terminal with fellBack set.
func ResolveRenderer(name string, tty bool) (renderer string, fellBack bool, err error) {
	switch strings.ToLower(name) {
	case "", RendererAuto:
		if tty {
			return RendererTerminal, false, nil
		}
		return RendererNone, false, nil
	case RendererTerminal:
		return RendererTerminal, false, nil
	case RendererNone:
		return RendererNone, false, nil
	case RendererOpenGL:
		return RendererTerminal, true, nil
	default:
		return "", false, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
	}
}

func (opts *Launcher) loadConfig() (*config.Config, error) {
	if opts.ConfigFile != "" {
		return config.Load(opts.ConfigFile)
	}

	return config.FindAndLoad(filepath.Dir(opts.SourceFile))
}

// Run loads the image and executes it with the resolved renderer.
func (opts *Launcher) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	l := logger.ForRun(runID)
	l.Info("Processing file", "file", opts.SourceFile)

	img, err := LoadImage(opts.SourceFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.SourceFile, err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		l.Debug("Using config", "file", cfg.Path)
	}

	name := img.Window.Renderer
	if cfg.Runtime.Renderer != "" {
		name = cfg.Runtime.Renderer
	}
	if opts.Renderer != "" {
		name = opts.Renderer
	}

	renderer, fellBack, err := ResolveRenderer(name, isTTY(opts.stdout()))
	if err != nil {
		return err
	}
	if fellBack {
		l.Warn("Renderer not available, using terminal", "renderer", name)
	}

	fps := int(img.Window.FPS)
	if cfg.Runtime.FPS > 0 {
		fps = cfg.Runtime.FPS
	}

	vmOpts := []vm.Option{
		vm.WithLogger(l),
		vm.WithTrace(opts.Verbose || cfg.Runtime.Debug),
		vm.WithMaxSteps(cfg.Runtime.MaxSteps),
		vm.WithStackLimits(cfg.Limits.ValueStack, cfg.Limits.ObjectStack),
		vm.WithMaxArraySize(cfg.Limits.MaxArraySize),
	}
	if cfg.Diagnostics.Enabled {
		vmOpts = append(vmOpts, vm.WithDiagnostics(func(e *vm.RuntimeError) {
			l.Warn("Runtime error", "pc", e.PC, "instr", e.Instr.String(), "error", e.Err)
		}))
	}

	var stats driver.Stats
	var it *vm.Interpreter

	switch renderer {
	case RendererTerminal:
		term := surface.NewTerminal(ctx, opts.stdout(), img.Window.Title)
		if it, err = vm.NewInterpreter(img, append(vmOpts, vm.WithWriter(term.Writer()))...); err != nil {
			return err
		}
		stats, err = driver.New(it, driver.WithLogger(l)).RunPresentation(ctx, term, fps)
		if cerr := term.Close(); err == nil {
			err = cerr
		}

	default:
		if it, err = vm.NewInterpreter(img, append(vmOpts, vm.WithWriter(opts.stdout()))...); err != nil {
			return err
		}
		stats, err = driver.New(it, driver.WithLogger(l)).RunHeadless(ctx)
	}

	l.Info("Run finished",
		"mode", stats.Mode,
		"instructions", stats.Instructions,
		"frames", stats.Frames,
		"diagnostics", it.DiagnosticCount())

	if dump := opts.dumpFile(cfg); dump != "" {
		if derr := vm.WriteSnapshot(dump, it.Snapshot(runID)); derr != nil {
			l.Error("Failed to write snapshot", "file", dump, "error", derr)
		} else {
			l.Info("Snapshot written", "file", dump)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("execution failed: %w", err)
	}

	return nil
}

func (opts *Launcher) dumpFile(cfg *config.Config) string {
	if opts.DumpFile != "" {
		return opts.DumpFile
	}
	return cfg.Diagnostics.Snapshot
}

// Assemble writes the image built from a .gasm source
func (opts *Launcher) Assemble() error {
	img, err := asm.AssembleFile(opts.SourceFile)
	if err != nil {
		return err
	}

	out := opts.OutputFile
	if out == "" {
		out = strings.TrimSuffix(opts.SourceFile, filepath.Ext(opts.SourceFile)) + ".gld"
	}

	if err := bytecode.WriteFile(out, img); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	log.Info("Assembled", "file", out, "instructions", len(img.Code), "strings", len(img.Strings))
	fmt.Fprintln(opts.stdout(), color.Success(fmt.Sprintf("%s -> %s", opts.SourceFile, out)))

	return nil
}

// Disasm prints an annotated instruction listing
func (opts *Launcher) Disasm() error {
	img, err := LoadImage(opts.SourceFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.SourceFile, err)
	}

	out := opts.stdout()
	fmt.Fprintln(out, color.GreenText(fmt.Sprintf("=== %s (%d instructions) ===", img.Window.Title, len(img.Code))))

	lines := bytecode.Disassemble(img)
	if len(lines) == 0 {
		fmt.Fprintln(out, color.GrayText("No code."))
	}

	for _, line := range lines {
		pc := color.CyanText(fmt.Sprintf("%04d", line.PC))
		if line.Comment == "" {
			fmt.Fprintf(out, "%s  %s\n", pc, color.YellowText(line.Instr.String()))
			continue
		}

		fmt.Fprintf(out, "%s  %s %s\n", pc,
			color.YellowText(fmt.Sprintf("%-24s", line.Instr.String())),
			color.GrayText("; "+line.Comment))
	}

	return nil
}

// Inspect prints the image's declarations as YAML
func (opts *Launcher) Inspect() error {
	img, err := LoadImage(opts.SourceFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.SourceFile, err)
	}

	doc := struct {
		bytecode.Image `yaml:",inline"`
		Instructions   int `yaml:"instructions"`
	}{*img, len(img.Code)}

	enc := yaml.NewEncoder(opts.stdout())
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", opts.SourceFile, err)
	}

	return enc.Close()
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
