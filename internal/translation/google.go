package translation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/bregydoc/gtranslate"
	"github.com/rs/zerolog/log"
)

// gtranslate keeps package-level state (the Google host and one JavaScript
// VM that computes request tokens), so only one call into it may run at a
// time, across all clients.
var googleSlot = make(chan struct{}, 1)

// googleCallTimeout bounds one text; gtranslate retries some HTTP errors
// without limit.
const googleCallTimeout = 120 * time.Second

// GoogleClient uses the public Google Translate endpoint, one text at a
// time. The batch fails if any text fails.
type GoogleClient struct {
	timeout   time.Duration
	translate func(text string, params gtranslate.TranslationParams) (string, error)
}

// NewGoogleClient creates a client backed by gtranslate.
func NewGoogleClient() *GoogleClient {
	return &GoogleClient{
		timeout:   googleCallTimeout,
		translate: gtranslate.TranslateWithParams,
	}
}

func (gc *GoogleClient) TranslateBatch(ctx context.Context, source, target string, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := gtranslate.TranslationParams{From: source, To: target}
	results := make([]string, len(texts))
	for i, text := range texts {
		out, err := gc.call(ctx, text, params)
		if err != nil {
			return nil, fmt.Errorf("google translate %s→%s item %d: %w", source, target, i, err)
		}
		results[i] = keepEdgeSpace(text, out)
	}

	log.Debug().Str("target", target).Int("texts", len(texts)).Msg("Google batch translated")
	return results, nil
}

// call runs one gtranslate call. The library cannot be interrupted, so a
// call that outlives ctx or the timeout is abandoned and keeps the slot
// until it returns.
func (gc *GoogleClient) call(ctx context.Context, text string, params gtranslate.TranslationParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gc.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case googleSlot <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() { <-googleSlot }()
		out, err := gc.translate(text, params)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// keepEdgeSpace trims the service's answer and puts back the leading and
// trailing whitespace of the source, which values rely on when they are
// concatenated.
func keepEdgeSpace(source, translated string) string {
	lead := source[:len(source)-len(strings.TrimLeftFunc(source, unicode.IsSpace))]
	rest := source[len(lead):]
	trail := rest[len(strings.TrimRightFunc(rest, unicode.IsSpace)):]
	return lead + strings.TrimSpace(translated) + trail
}
