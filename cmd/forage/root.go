// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config and builds the season oracle and API client shared by commands

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/config"
	"github.com/harper/forage/internal/season"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	oracle *season.Oracle
	client *api.Client
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "forage",
	Short: "Seasonal foraging map toolkit",
	Long: `
███████╗ ██████╗ ██████╗  █████╗  ██████╗ ███████╗
██╔════╝██╔═══██╗██╔══██╗██╔══██╗██╔════╝ ██╔════╝
█████╗  ██║   ██║██████╔╝███████║██║  ███╗█████╗
██╔══╝  ██║   ██║██╔══██╗██╔══██║██║   ██║██╔══╝
██║     ╚██████╔╝██║  ██║██║  ██║╚██████╔╝███████╗
╚═╝      ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝

       Find fruit, nuts and herbs that are in season

Examples:
  forage season 3 52
  forage locations --bbox 33.70,-118.30,33.85,-118.10 --in-season
  forage location 17
  forage icons --write ./sprites
  forage mcp`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if url, _ := cmd.Flags().GetString("api-url"); url != "" {
			cfg.APIURL = url
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			cfg.LogLevel = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger = log.NewWithOptions(os.Stderr, log.Options{
			Level:  cfg.Level(),
			Prefix: "forage",
		})

		table, err := cfg.SeasonTable()
		if err != nil {
			return err
		}
		oracle = season.NewOracle(season.WithTable(table))
		client = api.NewClient(cfg.APIURL, append(cfg.APIOptions(), api.WithLogger(logger))...)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "locations API base URL (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// commandContext returns the command's context, or a background context when
// the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
