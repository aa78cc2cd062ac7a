// kaiser breaks classical ciphers by scoring trial decryptions.
//
// Usage:
//
//	kaiser crack vigenere --shape 5 message.txt
//	kaiser encrypt caesar --key 3 < plain.txt
//	kaiser ioc message.txt
//	kaiser history
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
	"github.com/64/kaiser/internal/config"
	"github.com/64/kaiser/internal/quadgram"
	"github.com/64/kaiser/internal/registry"
	"github.com/64/kaiser/internal/report"
	"github.com/64/kaiser/internal/score"
	"github.com/64/kaiser/internal/search"
	"github.com/64/kaiser/internal/store"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one kaiser invocation and returns its exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp(stdin, stdout, stderr)
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "kaiser: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// usageError marks a mistake in how kaiser was invoked.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// userErrors are failures caused by the input rather than the environment.
var userErrors = []error{
	alphabet.ErrNonASCII,
	alphabet.ErrZeroStride,
	alphabet.ErrNegativeOffset,
	cipher.ErrInvalidKey,
	cipher.ErrInvalidShape,
	cipher.ErrNotEnumerable,
	config.ErrUnknownFormat,
	score.ErrUnknownMethod,
	quadgram.ErrTableSize,
	quadgram.ErrEmptyCorpus,
	quadgram.ErrMalformedCounts,
	registry.ErrUnknownCipher,
	registry.ErrUnknownEngine,
	registry.ErrNotBruteForceable,
	report.ErrInvalidReport,
	search.ErrZeroResults,
	search.ErrZeroStopAfter,
	search.ErrNegativeRestarts,
	search.ErrZeroWorkers,
	store.ErrNotFound,
	store.ErrAmbiguous,
}

// exitCode maps err to exitUsage for invocation and input mistakes and to
// exitFailure for everything else.
func exitCode(err error) int {
	var (
		ue usageError
		ve config.ValidationErrors
	)
	if errors.As(err, &ue) || errors.As(err, &ve) {
		return exitUsage
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUsage
		}
	}
	return exitFailure
}
