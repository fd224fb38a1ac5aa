package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlekbai/sqlrender/internal/config"
)

var (
	// Global state set during PersistentPreRunE
	cfg    *config.Config
	logger *slog.Logger

	// Persistent flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "sqlrender",
	Short: "Render dialect-aware SQL expressions",
	Long: `sqlrender - dialect-aware SQL expression rendering

sqlrender turns JSON query documents into parameterized SQL for ANSI, H2,
MySQL, PostgreSQL, SQLite and SQL Server, either once from the command line
or as a Connect service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: SQLRENDER_* environment only)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(dialectsCmd)
}
