package glossary

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Store reads and writes glossary terms in Neo4j. A term is a (:Term) node
// linked to (:Language) nodes; the translation sits on the relationship.
type Store struct {
	driver neo4j.DriverWithContext
}

// NewStore creates a store on an open driver.
func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

// Connect opens a driver and verifies that the server answers.
func Connect(ctx context.Context, uri, user, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	return NewStore(driver), nil
}

// Close releases the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// EnsureSchema creates uniqueness constraints.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Term) REQUIRE t.source IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (l:Language) REQUIRE l.code IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Debug().Msg("Glossary schema ensured")
	return nil
}

// Upsert writes terms, replacing the translations they carry.
func (s *Store) Upsert(ctx context.Context, terms []Term) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, t := range terms {
		_, err := session.Run(ctx, `
			MERGE (t:Term {source: $source})
			SET t.category = $category
		`, map[string]any{
			"source":   t.Source,
			"category": t.Category,
		})
		if err != nil {
			return fmt.Errorf("upsert term %s: %w", t.Source, err)
		}

		for lang, text := range t.Translations {
			_, err := session.Run(ctx, `
				MATCH (t:Term {source: $source})
				MERGE (l:Language {code: $lang})
				MERGE (t)-[r:TRANSLATED_AS]->(l)
				SET r.text = $text
			`, map[string]any{
				"source": t.Source,
				"lang":   lang,
				"text":   text,
			})
			if err != nil {
				return fmt.Errorf("upsert term %s (%s): %w", t.Source, lang, err)
			}
		}
	}

	log.Info().Int("terms", len(terms)).Msg("Glossary terms stored")
	return nil
}

// Terminology returns source → translation for every term known in lang.
func (s *Store) Terminology(ctx context.Context, lang string) (map[string]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (t:Term)-[r:TRANSLATED_AS]->(:Language {code: $lang})
		RETURN t.source AS source, r.text AS text
	`, map[string]any{"lang": lang})
	if err != nil {
		return nil, fmt.Errorf("query terminology: %w", err)
	}

	terms := make(map[string]string)
	for result.Next(ctx) {
		record := result.Record()
		source, _ := record.Get("source")
		text, _ := record.Get("text")
		terms[fmt.Sprintf("%v", source)] = fmt.Sprintf("%v", text)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read terminology: %w", err)
	}

	log.Debug().Str("lang", lang).Int("count", len(terms)).Msg("Loaded glossary")
	return terms, nil
}
