package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlekbai/sqlrender/internal/dialect"
	"github.com/atlekbai/sqlrender/internal/hsql"
	"github.com/atlekbai/sqlrender/internal/query"
)

var (
	renderDialect     string
	renderPlaceholder string
	renderJSON        bool
)

var renderCmd = &cobra.Command{
	Use:   "render [document.json]",
	Short: "Render a query document to SQL",
	Long: `Render a JSON query document to SQL.

The document is read from the given file, or from stdin when no file (or "-")
is given. The SQL is printed first, followed by one line per bound argument.`,
	Example: `  # Render for H2 with $n placeholders
  sqlrender render --dialect h2 --placeholder dollar query.json

  # Pipe a document and get JSON back
  echo '{"select": [{"ident": "a.b"}]}' | sqlrender render --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening document: %w", err)
			}
			defer func() { _ = f.Close() }()
			in = f
		}

		var doc map[string]any
		if err := json.NewDecoder(in).Decode(&doc); err != nil {
			return fmt.Errorf("decoding document: %w", err)
		}

		defaults := cfg.Defaults()
		if renderDialect != "" {
			tag, err := dialect.ParseTag(renderDialect)
			if err != nil {
				return err
			}
			defaults.Dialect = tag
		}
		if renderPlaceholder != "" {
			if _, err := query.ParsePlaceholder(renderPlaceholder); err != nil {
				return err
			}
			defaults.Placeholder = renderPlaceholder
		}

		res, err := query.NewBuilder(hsql.DefaultConfig(), defaults).Build(doc)
		if err != nil {
			return err
		}
		logger.Debug("rendered", "dialect", res.Dialect.String(), "args", len(res.Args))
		return printResult(cmd.OutOrStdout(), res)
	},
}

func printResult(w io.Writer, res *query.Result) error {
	if renderJSON {
		args := res.Args
		if args == nil {
			args = []any{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"dialect": res.Dialect.String(),
			"sql":     res.SQL,
			"args":    args,
		})
	}

	if _, err := fmt.Fprintln(w, res.SQL); err != nil {
		return err
	}
	for i, arg := range res.Args {
		if _, err := fmt.Fprintf(w, "-- $%d = %v\n", i+1, arg); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	renderCmd.Flags().StringVar(&renderDialect, "dialect", "", "dialect (overrides config and document default)")
	renderCmd.Flags().StringVar(&renderPlaceholder, "placeholder", "", "placeholder format: question, dollar, colon, at")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print the result as JSON")
}
