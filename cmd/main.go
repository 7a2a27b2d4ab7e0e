package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"golden/internal/launcher"
	"golden/internal/logger"
	"golden/pkg/bytecode"
	"golden/pkg/color"
)

const version = "0.3.0"

func usage() {
	fmt.Printf("Usage: %s [options] <command> <file>\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  run      execute a bytecode image or .gasm source")
	fmt.Println("  asm      assemble a .gasm source into an image")
	fmt.Println("  disasm   print an annotated instruction listing")
	fmt.Println("  inspect  print the image declarations as YAML")
	fmt.Println("  version  print the version")
	fmt.Println("Options:")
	flag.PrintDefaults()
}

// Main entry point for the Golden VM.
func main() {
	options := launcher.Launcher{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode (debug logs and instruction trace)")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.StringVar(&options.Renderer, "r", "", "Renderer override (auto, terminal, none)")
	flag.StringVar(&options.ConfigFile, "c", "", "Path to golden.toml (searched next to the file when empty)")
	flag.StringVar(&options.DumpFile, "dump", "", "Write a CBOR snapshot of the final VM state")
	flag.StringVar(&options.OutputFile, "o", "", "Output image of the asm command")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		usage()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) > 0 && args[0] == "version" {
		fmt.Printf("golden %s (bytecode version %d)\n", version, bytecode.Version)
		return
	}

	if len(args) < 2 {
		log.Fatal("Missing command or input file", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.SourceFile = args[1]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := options.Execute(ctx, args[0]); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, color.Error(err.Error()))
		os.Exit(1)
	}
}
