package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlekbai/sqlrender/internal/hsql"
)

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List dialects and function renderers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := hsql.DefaultConfig()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Dialects:")
		for _, tag := range c.Quotes().Tags() {
			marker := ""
			if tag == cfg.DialectTag() {
				marker = " (default)"
			}
			fmt.Fprintf(out, "  - %s%s\n", tag, marker)
		}
		fmt.Fprintln(out, "Functions:")
		for _, name := range c.Functions().Names() {
			fmt.Fprintf(out, "  - %s\n", name)
		}
		return nil
	},
}
