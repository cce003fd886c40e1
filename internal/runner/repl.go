package runner

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"

	"bbcbasic/pkg/color"
	"bbcbasic/pkg/interpreter"
)

const prompt = "> "

const banner = "BBC BASIC expression interpreter. Type QUIT to exit."

// historyPath resolves a relative history file against the home directory.
func (r *Runner) historyPath() string {
	path := r.Config.History
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, path)
}

// repl reads lines with the line editor until QUIT or end of input. Errors
// are reported and the session carries on.
func (r *Runner) repl(it *interpreter.Interpreter) error {
	fmt.Fprintln(r.Stdout, color.GreenText(banner))

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := r.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(histPath)
			if err != nil {
				fmt.Fprintln(r.Stderr, color.Warning(fmt.Sprintf("history not saved: %v", err)))
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			ln.Close()
			os.Exit(130)
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(r.Stdout)
			return nil
		}
		ln.AppendHistory(line)

		quit, err := r.Command(it, line)
		if err != nil {
			log.Debug("command failed", "line", line, "error", err)
			fmt.Fprintln(r.Stderr, color.Error(interpreter.Report(err)))
		}
		if quit {
			return nil
		}
	}
}
