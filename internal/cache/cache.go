package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lualoc/internal/textutil"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by a Store when no translation is stored for a key.
var ErrNotFound = errors.New("cache: entry not found")

// Record is one stored translation.
type Record struct {
	Hash       string
	SourceLang string
	TargetLang string
	Source     string
	Translated string
}

// Store persists translations between runs.
type Store interface {
	Get(ctx context.Context, hash string) (string, error)
	Upsert(ctx context.Context, r Record) error
	List(ctx context.Context) ([]Record, error)
}

// TranslationCache is an in-memory cache with an optional persistent Store
// behind it. Keys cover the language pair and the exact (masked) text.
type TranslationCache struct {
	store  Store
	mu     sync.RWMutex
	memory map[string]string // hash → translated text
}

// NewTranslationCache creates a cache. store may be nil for memory only.
func NewTranslationCache(store Store) *TranslationCache {
	return &TranslationCache{
		store:  store,
		memory: make(map[string]string),
	}
}

// Key returns the cache key for text translated from source to target.
func Key(source, target, text string) string {
	return textutil.HashParts(source, target, text)
}

// Get retrieves a cached translation.
func (c *TranslationCache) Get(ctx context.Context, source, target, text string) (string, bool) {
	hash := Key(source, target, text)

	c.mu.RLock()
	v, ok := c.memory[hash]
	c.mu.RUnlock()
	if ok {
		return v, true
	}

	if c.store == nil {
		return "", false
	}
	translated, err := c.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Msg("Cache lookup failed")
		}
		return "", false
	}

	c.mu.Lock()
	c.memory[hash] = translated
	c.mu.Unlock()

	return translated, true
}

// Set stores a translation in memory and, if configured, in the store.
func (c *TranslationCache) Set(ctx context.Context, source, target, text, translated string) error {
	hash := Key(source, target, text)

	c.mu.Lock()
	c.memory[hash] = translated
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	err := c.store.Upsert(ctx, Record{
		Hash:       hash,
		SourceLang: source,
		TargetLang: target,
		Source:     text,
		Translated: translated,
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Len returns the number of translations held in memory.
func (c *TranslationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

// Preload loads every stored translation into memory.
func (c *TranslationCache) Preload(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	rows, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		c.memory[row.Hash] = row.Translated
	}

	log.Info().Int("count", len(rows)).Msg("Preloaded translation cache")
	return nil
}
