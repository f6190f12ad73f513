// Package translation holds the batch translators the localizer sends
// masked strings to.
package translation

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps failures to reach or construct a translation backend.
	ErrUnavailable = errors.New("translation service unavailable")

	// ErrBatchMismatch is returned when a backend answers a batch with a
	// different number of strings than it was given.
	ErrBatchMismatch = errors.New("translation batch size mismatch")
)

// Translator translates a batch of strings from source to target. The
// result has exactly one string per input, in input order. Language codes
// are the service codes from the language table.
type Translator interface {
	TranslateBatch(ctx context.Context, source, target string, texts []string) ([]string, error)
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, source, target string, texts []string) ([]string, error)

func (f Func) TranslateBatch(ctx context.Context, source, target string, texts []string) ([]string, error) {
	return f(ctx, source, target, texts)
}

// checkCount verifies the one-output-per-input contract.
func checkCount(in, out int) error {
	if in != out {
		return fmt.Errorf("%w: sent %d, received %d", ErrBatchMismatch, in, out)
	}
	return nil
}

// Unavailable wraps cause so callers can match ErrUnavailable.
func Unavailable(cause error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, cause)
}
