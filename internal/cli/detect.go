package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/umbra/internal/detect"
	"github.com/bnema/umbra/internal/dom"
)

// NewDetectCmd creates the detect command: classify a document as
// already-dark or light and show the evidence.
func NewDetectCmd() *cobra.Command {
	var noSystem bool

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Report whether an HTML document is already dark",
		Long: `Runs the already-dark classifier against a document and prints the
verdict with the evidence it was based on: an explicit theme marker,
sampled background luminance, or the system color scheme preference.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDetect(args[0], noSystem)
		},
	}

	cmd.Flags().BoolVar(&noSystem, "no-system", false, "skip the system color scheme probe")
	return cmd
}

func runDetect(file string, noSystem bool) error {
	var doc *dom.Document
	var err error
	if file == "-" {
		doc, err = dom.Parse(os.Stdin)
	} else {
		var f *os.File
		f, err = os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		doc, err = dom.Parse(f)
		_ = f.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}

	var opts []detect.Option
	if noSystem {
		opts = append(opts, detect.WithSystemDetectors())
	}
	result := detect.New(opts...).IsAlreadyDark(rootContext(), doc)

	styles := newPalette()
	verdict := styles.Success.Render("light")
	if result.Dark {
		verdict = styles.Badge.Render("dark")
	}
	fmt.Printf("%s %s\n", styles.Title.Render("verdict:"), verdict)
	fmt.Printf("%s %s\n", styles.Label.Render("signal:"), string(result.Signal))

	switch result.Signal {
	case detect.SignalMarker:
		fmt.Printf("%s %s\n", styles.Label.Render("marker:"), result.Marker)
	case detect.SignalLuminance:
		fmt.Printf("%s %.3f over %d samples\n",
			styles.Label.Render("mean luminance:"), result.MeanLuminance, result.Samples)
	case detect.SignalSystem:
		fmt.Printf("%s %s\n", styles.Label.Render("source:"), result.Source)
	default:
		fmt.Println(styles.Muted.Render("no signal matched; defaulted to light"))
	}
	return nil
}
