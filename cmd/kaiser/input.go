package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/fsutil"
)

// stdinSource names standard input in reports and history.
const stdinSource = "-"

// readInput reads the file named by the first argument, or standard input
// when there is none or it is "-". It returns the text and its source name.
func (a *app) readInput(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == stdinSource {
		if f, ok := a.stdin.(*os.File); ok && fsutil.IsTerminal(f) {
			fmt.Fprintln(a.stderr, "kaiser: reading from the terminal, end input with Ctrl-D")
		}
		data, err := fsutil.ReadInput(a.stdin, fsutil.MaxInput)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), stdinSource, nil
	}

	data, err := fsutil.ReadFile(args[0], fsutil.MaxInput)
	if err != nil {
		return "", "", fmt.Errorf("read input: %w", err)
	}
	return string(data), args[0], nil
}

// readBuffer reads input like readInput and converts it to a Buffer.
func (a *app) readBuffer(args []string) (*alphabet.Buffer, string, error) {
	text, source, err := a.readInput(args)
	if err != nil {
		return nil, "", err
	}
	buf, err := alphabet.FromText(text)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", source, err)
	}
	return buf, source, nil
}

// writeText writes s followed by a newline unless it already ends with one.
func writeText(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}

// oneLine collapses runs of whitespace so s fits on a single output line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
