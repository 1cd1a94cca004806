// Package cli provides the command-line interface for umbra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/umbra/internal/config"
	"github.com/bnema/umbra/internal/logging"
	"github.com/bnema/umbra/internal/store"
)

// CLI bundles the settings manager, the override store, and the output
// styles the commands share.
type CLI struct {
	Manager *config.Manager
	Store   *store.Store
	Styles  *palette
}

// NewCLI loads the configuration and opens the per-origin override store.
func NewCLI() (*CLI, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if err := manager.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPath, err := config.GetDatabaseFile()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open override store: %w", err)
	}

	return &CLI{Manager: manager, Store: st, Styles: newPalette()}, nil
}

// Close releases the override store.
func (c *CLI) Close() error {
	return c.Store.Close()
}

// Settings returns the loaded settings with stored origin overrides
// merged in. Overrides from the config file win over stored ones.
func (c *CLI) Settings(ctx context.Context) (config.Settings, error) {
	settings := c.Manager.Get()
	if err := c.Store.MergeInto(ctx, &settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// rootContext builds the base context with the environment-configured
// logger attached.
func rootContext() context.Context {
	return logging.WithContext(context.Background(), logging.NewFromEnv())
}

// NewRootCmd creates the root command for umbra.
func NewRootCmd(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "umbra",
		Short: "Dark-mode theming engine for HTML documents",
		Long: `Umbra recolors HTML documents into readable dark themes using one of
three strategies: a CSS filter inversion, a per-element lightness
inversion, or a semantic palette engine with a WCAG contrast guarantee.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("umbra %s\n", version)
			fmt.Printf("commit: %s\n", commit)
			fmt.Printf("built: %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(NewApplyCmd())
	rootCmd.AddCommand(NewDetectCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewOriginCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

func closeQuietly(c *CLI) {
	if err := c.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close override store: %v\n", err)
	}
}
