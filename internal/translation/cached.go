package translation

import (
	"context"

	"lualoc/internal/cache"

	"github.com/rs/zerolog/log"
)

// CachedTranslator answers from the translation cache and sends only the
// misses to the wrapped translator.
type CachedTranslator struct {
	next  Translator
	cache *cache.TranslationCache
}

// NewCachedTranslator wraps next with c.
func NewCachedTranslator(next Translator, c *cache.TranslationCache) *CachedTranslator {
	return &CachedTranslator{next: next, cache: c}
}

func (ct *CachedTranslator) TranslateBatch(ctx context.Context, source, target string, texts []string) ([]string, error) {
	results := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		if v, ok := ct.cache.Get(ctx, source, target, t); ok {
			results[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		log.Debug().Str("target", target).Int("hits", len(texts)).Msg("Batch served from cache")
		return results, nil
	}

	translated, err := ct.next.TranslateBatch(ctx, source, target, missTexts)
	if err != nil {
		return nil, err
	}
	if err := checkCount(len(missTexts), len(translated)); err != nil {
		return nil, err
	}

	for j, idx := range missIdx {
		results[idx] = translated[j]
		if err := ct.cache.Set(ctx, source, target, missTexts[j], translated[j]); err != nil {
			log.Warn().Err(err).Msg("Failed to cache translation")
		}
	}

	log.Debug().
		Str("target", target).
		Int("hits", len(texts)-len(missTexts)).
		Int("misses", len(missTexts)).
		Msg("Batch translated")

	return results, nil
}
