package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lualoc/internal/config"
	"lualoc/internal/langs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set via -ldflags during build.
var Version = "dev"

// globals holds flags shared by every command.
type globals struct {
	cfg           *config.Config
	verbose       bool
	tableName     string
	languagesFile string
	pattern       string
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newRootCmd(config.Load()).Execute(); err != nil {
		log.Error().Err(err).Msg("lualoc failed")
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	g := &globals{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "lualoc",
		Short: "Translate and format the localization table of Lua mod files",
		Long: `lualoc edits the "local localization = { ... }" table of a Lua mod file.

It fills in missing languages through a translation service, keeps color tags,
escapes and format placeholders intact, and rewrites every entry with its
languages in canonical order. Everything outside the table is left untouched.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", cfg.Verbose, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&g.tableName, "table", cfg.TableName, `Name of the Lua table to edit ("" accepts any "local X = {")`)
	rootCmd.PersistentFlags().StringVar(&g.languagesFile, "languages", cfg.LanguagesFile, "YAML file with the language table (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&g.pattern, "pattern", "", `File name pattern used inside directories (default "*localization*.lua")`)

	rootCmd.AddCommand(translateCmd(g))
	rootCmd.AddCommand(formatCmd(g))
	rootCmd.AddCommand(statusCmd(g))
	rootCmd.AddCommand(languagesCmd(g))
	rootCmd.AddCommand(glossaryCmd(g))

	return rootCmd
}

// languageTable returns the configured table, falling back to the built-in one.
func (g *globals) languageTable() (langs.Table, error) {
	if g.languagesFile == "" {
		return langs.Default(), nil
	}
	return langs.LoadFile(g.languagesFile)
}

func languagesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Print the language table in canonical order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := g.languageTable()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %-8s %s\n", "CODE", "SERVICE", "NAME")
			for _, l := range table.Languages() {
				marker := ""
				if l.Code == table.Source() {
					marker = " (source)"
				}
				fmt.Fprintf(out, "%-8s %-8s %s%s\n", l.Code, l.Service, l.Name, marker)
			}
			return nil
		},
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

var errNoPaths = errors.New("no localization files found")
