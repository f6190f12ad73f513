package cli

import (
	"fmt"
	"io"

	"lualoc/internal/localizer"
	"lualoc/internal/parser"

	"github.com/spf13/cobra"
)

func statusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status <file-or-dir>...",
		Short: "Show per-language coverage of the localization table",
		Long: `Show how many entries have a value for each language. Does not modify
any files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(g, cmd.OutOrStdout(), args)
		},
	}
}

func runStatus(g *globals, out io.Writer, paths []string) error {
	table, err := g.languageTable()
	if err != nil {
		return err
	}
	files, err := g.resolveFiles(paths)
	if err != nil {
		return err
	}

	order := table.Order()
	for _, file := range files {
		doc, err := parser.ReadDocument(file)
		if err != nil {
			return err
		}
		tbl, err := parser.Extract(doc.Lines, g.tableName)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		warnTable(file, doc.Lines, tbl, order)

		fmt.Fprintf(out, "%s (%d entries, lines %d-%d)\n", file, len(tbl.Entries), tbl.Start+1, tbl.End+1)
		for _, c := range localizer.Status(tbl.Entries, order) {
			pct := 0.0
			if total := c.Present + c.Missing; total > 0 {
				pct = float64(c.Present) / float64(total) * 100
			}
			fmt.Fprintf(out, "  %-6s %5d/%-5d %5.1f%%\n", c.Lang, c.Present, c.Present+c.Missing, pct)
		}
	}
	return nil
}
