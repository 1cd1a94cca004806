package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/umbra/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSchemaCmd())
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.GetConfigFile()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cli, err := NewCLI()
			if err != nil {
				return err
			}
			defer closeQuietly(cli)

			s, err := cli.Settings(rootContext())
			if err != nil {
				return err
			}

			styles := cli.Styles
			row := func(label string, value any) {
				fmt.Printf("%s %v\n", styles.Label.Render(fmt.Sprintf("%-15s", label)), value)
			}
			row("enabled", s.Enabled)
			row("strategy", s.Strategy)
			row("brightness", s.Brightness)
			row("contrast", s.Contrast)
			row("sepia", s.Sepia)
			row("grayscale", s.Grayscale)
			row("blue_shift", s.BlueShift)
			row("amoled", s.AMOLED)
			row("detect_dark", s.DetectDark)
			row("force_override", s.ForceOverride)
			row("origins", len(s.Origins))
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for the settings record",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		},
	}
}
