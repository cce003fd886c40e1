package main

import (
	"bbcbasic/internal/config"
	"bbcbasic/internal/logger"
	"bbcbasic/internal/runner"
	"bbcbasic/pkg/color"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Main entry point for the BBC BASIC interpreter.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.Trace, "t", false, "Dump interpreter state on errors")
	flag.StringVar(&options.Expr, "e", "", "Evaluate an expression and print the result")
	flag.StringVar(&options.ConfigFile, "config", "", "Configuration file (YAML)")

	flag.Parse()
	args := flag.Args()

	cfg, err := config.Load(options.ConfigFile)
	if err != nil {
		log.Fatal("Bad configuration", "error", err)
	}
	options.Config = cfg
	options.Verbose = options.Verbose || cfg.Verbose
	options.NoColor = options.NoColor || cfg.NoColor

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] [file]\n", os.Args[0])
		fmt.Println("Without a file, lines are read from the terminal.")
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) > 0 {
		options.SourceFile = args[0]
	}

	if err := options.Run(); err != nil {
		// the error has already been reported in BASIC's own format
		if errors.Is(err, runner.ErrFailed) {
			os.Exit(1)
		}
		log.Fatal("Run failed", "error", err)
	}
}
