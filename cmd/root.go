package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/malramsay64/decimator/internal/catalog"
	"github.com/malramsay64/decimator/internal/config"
)

var (
	cfgFile string
	dbPath  string
	workers int
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "decimator",
	Short: "Cull photo shoots down to the keepers",
	Long: `decimator imports photographs into a local catalog, detects exact
duplicates with two-tier content hashing, and tracks ratings and
pick/reject decisions while you cull.

Example usage:
  decimator import ~/photos/shoot-2024     # Import a shoot
  decimator list --flag Pick               # Show picked photos
  decimator rate 3b241101-... 5            # Rate a photo
  decimator flag 3b241101-... reject       # Reject a photo
  decimator similar                        # Find visually similar photos`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		// Flags override the config file.
		if dbPath != "" {
			cfg.Catalog.Path = dbPath
		}
		if workers > 0 {
			cfg.Import.Workers = workers
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	homeDir, _ := os.UserHomeDir()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default "+homeDir+"/.decimator/decimator.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to catalog database (overrides config)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Number of parallel workers (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openCatalog opens the configured catalog database.
func openCatalog() (*catalog.Catalog, error) {
	c, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return c, nil
}
