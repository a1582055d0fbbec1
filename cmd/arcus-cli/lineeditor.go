package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".arcus_cli_history"
	historySize     = 1000
)

// lineEditor reads commands with history and line editing when stdin is a
// terminal, and plain lines otherwise (pipes, scripts).
type lineEditor struct {
	rl      *readline.Instance
	scanner *bufio.Scanner
}

func newLineEditor() *lineEditor {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return &lineEditor{scanner: bufio.NewScanner(os.Stdin)}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            filepath.Join(home, historyFileName),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return &lineEditor{scanner: bufio.NewScanner(os.Stdin)}
	}

	return &lineEditor{rl: rl}
}

// readLine returns io.EOF on end of input or Ctrl-C.
func (le *lineEditor) readLine(prompt string) (string, error) {
	if le.rl == nil {
		fmt.Print(prompt)
		if !le.scanner.Scan() {
			if err := le.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return le.scanner.Text(), nil
	}

	le.rl.SetPrompt(prompt)
	line, err := le.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		_ = le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (le *lineEditor) close() {
	if le.rl != nil {
		_ = le.rl.Close()
	}
}
