package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/umbra/internal/config"
	"github.com/bnema/umbra/internal/strategy"
)

// NewOriginCmd creates the origin command group for managing per-origin
// overrides.
func NewOriginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "origin",
		Short: "Manage per-origin theming overrides",
	}
	cmd.AddCommand(newOriginListCmd())
	cmd.AddCommand(newOriginSetCmd())
	cmd.AddCommand(newOriginRmCmd())
	return cmd
}

func newOriginListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored origin overrides",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cli, err := NewCLI()
			if err != nil {
				return err
			}
			defer closeQuietly(cli)

			overrides, err := cli.Store.List(rootContext())
			if err != nil {
				return err
			}
			if len(overrides) == 0 {
				fmt.Println(cli.Styles.Muted.Render("no origin overrides stored"))
				return nil
			}

			origins := make([]string, 0, len(overrides))
			for origin := range overrides {
				origins = append(origins, origin)
			}
			sort.Strings(origins)

			for _, origin := range origins {
				fmt.Printf("%s %s\n",
					cli.Styles.Title.Render(origin),
					cli.Styles.Muted.Render(describeOverride(overrides[origin])))
			}
			return nil
		},
	}
}

type originSetFlags struct {
	enabled    string
	strategy   string
	brightness int
	contrast   int
	sepia      int
	grayscale  int
	blueShift  int
	amoled     string
	force      string
}

const flagUnset = -1

func newOriginSetCmd() *cobra.Command {
	flags := &originSetFlags{}

	cmd := &cobra.Command{
		Use:   "set <origin>",
		Short: "Store an override for an origin",
		Long: `Stores a partial settings override for one origin. Only the flags you
pass are overridden; everything else falls through to the global
settings. Boolean flags take true or false.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runOriginSet(args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.enabled, "enabled", "", "enable or disable theming (true/false)")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "strategy for this origin")
	cmd.Flags().IntVar(&flags.brightness, "brightness", flagUnset, "brightness percentage (50-120)")
	cmd.Flags().IntVar(&flags.contrast, "contrast", flagUnset, "contrast percentage (50-200)")
	cmd.Flags().IntVar(&flags.sepia, "sepia", flagUnset, "sepia percentage (0-100)")
	cmd.Flags().IntVar(&flags.grayscale, "grayscale", flagUnset, "grayscale percentage (0-100)")
	cmd.Flags().IntVar(&flags.blueShift, "blue-shift", flagUnset, "blue light reduction percentage (0-100)")
	cmd.Flags().StringVar(&flags.amoled, "amoled", "", "true black backgrounds (true/false)")
	cmd.Flags().StringVar(&flags.force, "force", "", "bypass already-dark detection (true/false)")

	return cmd
}

func runOriginSet(origin string, flags *originSetFlags) error {
	override := config.OriginOverride{}

	var err error
	if override.Enabled, err = parseBoolFlag("enabled", flags.enabled); err != nil {
		return err
	}
	if override.AMOLED, err = parseBoolFlag("amoled", flags.amoled); err != nil {
		return err
	}
	if override.ForceOverride, err = parseBoolFlag("force", flags.force); err != nil {
		return err
	}
	if flags.strategy != "" {
		if _, err := strategy.ParseKind(flags.strategy); err != nil {
			return err
		}
		override.Strategy = flags.strategy
	}
	override.Brightness = intFlag(flags.brightness)
	override.Contrast = intFlag(flags.contrast)
	override.Sepia = intFlag(flags.sepia)
	override.Grayscale = intFlag(flags.grayscale)
	override.BlueShift = intFlag(flags.blueShift)

	if override == (config.OriginOverride{}) {
		return fmt.Errorf("no override flags given, nothing to store")
	}

	cli, err := NewCLI()
	if err != nil {
		return err
	}
	defer closeQuietly(cli)

	if err := cli.Store.Put(rootContext(), origin, override); err != nil {
		return err
	}
	fmt.Printf("%s %s\n",
		cli.Styles.Success.Render("stored override for"),
		config.NormalizeOrigin(origin))
	return nil
}

func newOriginRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <origin>",
		Short: "Remove a stored origin override",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cli, err := NewCLI()
			if err != nil {
				return err
			}
			defer closeQuietly(cli)

			if err := cli.Store.Delete(rootContext(), args[0]); err != nil {
				return err
			}
			fmt.Printf("%s %s\n",
				cli.Styles.Success.Render("removed override for"),
				config.NormalizeOrigin(args[0]))
			return nil
		},
	}
}

func parseBoolFlag(name, value string) (*bool, error) {
	switch strings.ToLower(value) {
	case "":
		return nil, nil
	case "true", "yes", "on":
		v := true
		return &v, nil
	case "false", "no", "off":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("--%s takes true or false, got %q", name, value)
	}
}

func intFlag(v int) *int {
	if v == flagUnset {
		return nil
	}
	return &v
}

func describeOverride(o config.OriginOverride) string {
	var parts []string
	if o.Enabled != nil {
		parts = append(parts, fmt.Sprintf("enabled=%t", *o.Enabled))
	}
	if o.Strategy != "" {
		parts = append(parts, "strategy="+o.Strategy)
	}
	if o.Brightness != nil {
		parts = append(parts, fmt.Sprintf("brightness=%d", *o.Brightness))
	}
	if o.Contrast != nil {
		parts = append(parts, fmt.Sprintf("contrast=%d", *o.Contrast))
	}
	if o.Sepia != nil {
		parts = append(parts, fmt.Sprintf("sepia=%d", *o.Sepia))
	}
	if o.Grayscale != nil {
		parts = append(parts, fmt.Sprintf("grayscale=%d", *o.Grayscale))
	}
	if o.BlueShift != nil {
		parts = append(parts, fmt.Sprintf("blue-shift=%d", *o.BlueShift))
	}
	if o.AMOLED != nil {
		parts = append(parts, fmt.Sprintf("amoled=%t", *o.AMOLED))
	}
	if o.ForceOverride != nil {
		parts = append(parts, fmt.Sprintf("force=%t", *o.ForceOverride))
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " ")
}
