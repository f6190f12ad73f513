package cli

import (
	"errors"

	"lualoc/internal/glossary"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func glossaryCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Manage the term glossary used by the gemini provider",
	}
	cmd.AddCommand(glossaryImportCmd(g))
	return cmd
}

func glossaryImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import <terms.yaml>",
		Short: "Load glossary terms from YAML into Neo4j",
		Long: `Load glossary terms from YAML into Neo4j (NEO4J_URI, NEO4J_USER,
NEO4J_PASSWORD). Translations are keyed by service language code.

  terms:
    - source: Ritual
      translations:
        fr: Rituel
        zh-CN: 仪式`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.cfg.Neo4jURI == "" {
				return errors.New("NEO4J_URI is not set")
			}

			terms, err := glossary.LoadFile(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			store, err := glossary.Connect(ctx, g.cfg.Neo4jURI, g.cfg.Neo4jUser, g.cfg.Neo4jPassword)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := store.Upsert(ctx, terms); err != nil {
				return err
			}

			log.Info().Str("file", args[0]).Int("terms", len(terms)).Msg("Glossary imported")
			return nil
		},
	}
}
