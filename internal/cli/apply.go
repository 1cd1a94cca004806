package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/umbra/internal/config"
	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/engine"
	"github.com/bnema/umbra/internal/logging"
)

// applyConcurrency bounds how many documents are themed in parallel.
const applyConcurrency = 4

type applyFlags struct {
	strategy string
	origin   string
	output   string
	write    bool
	optimize bool
	force    bool
}

// NewApplyCmd creates the apply command: theme one or more HTML files.
func NewApplyCmd() *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply <file>...",
		Short: "Apply a dark theme to HTML files",
		Long: `Reads each HTML file, applies the configured theming strategy, and
writes the result to stdout, to --output, or back in place with --write.
Use "-" to read a single document from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.OutOrStdout(), args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.strategy, "strategy", "s", "", "strategy override (photon-inverter, dom-walker, chroma-semantic)")
	cmd.Flags().StringVar(&flags.origin, "origin", "", "origin whose overrides apply (defaults to the file name)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single input only)")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "rewrite the input files in place")
	cmd.Flags().BoolVar(&flags.optimize, "optimize", false, "run the contrast optimizer after theming")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "theme even when the page is already dark")

	return cmd
}

func runApply(w io.Writer, files []string, flags *applyFlags) error {
	if flags.output != "" && len(files) > 1 {
		return fmt.Errorf("--output works with a single input file")
	}
	if flags.write && flags.output != "" {
		return fmt.Errorf("--write and --output are mutually exclusive")
	}

	cli, err := NewCLI()
	if err != nil {
		return err
	}
	defer closeQuietly(cli)

	ctx := rootContext()
	settings, err := cli.Settings(ctx)
	if err != nil {
		return err
	}
	if flags.strategy != "" {
		settings.Strategy = flags.strategy
	}
	if flags.force {
		settings.ForceOverride = true
	}

	// Documents are themed concurrently but rendered to memory; stdout is
	// only written after the group finishes, in input order, so output from
	// different files never interleaves.
	rendered := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(applyConcurrency)
	for i, file := range files {
		g.Go(func() error {
			out, err := applyFile(gctx, cli, settings, file, flags)
			if err != nil {
				return err
			}
			rendered[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, out := range rendered {
		if out == "" {
			continue
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}

// applyFile themes one document. When the result is destined for stdout it
// is returned as a string instead of written; the caller owns the writer.
func applyFile(ctx context.Context, cli *CLI, settings config.Settings, file string, flags *applyFlags) (string, error) {
	var doc *dom.Document
	var err error
	if file == "-" {
		doc, err = dom.Parse(os.Stdin)
	} else {
		var f *os.File
		f, err = os.Open(file)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", file, err)
		}
		doc, err = dom.Parse(f)
		_ = f.Close()
	}
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", file, err)
	}

	origin := flags.origin
	if origin == "" && file != "-" {
		origin = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	ctx = logging.WithOrigin(ctx, origin)

	e := engine.New(ctx, doc)
	defer e.Close()

	outcome, err := e.Apply(ctx, settings, origin)
	if err != nil {
		return "", fmt.Errorf("failed to theme %s: %w", file, err)
	}
	if err := e.Scheduler().Drain(ctx); err != nil {
		return "", err
	}

	if outcome.Applied && flags.optimize {
		if _, err := e.Optimize(ctx); err != nil {
			return "", fmt.Errorf("failed to optimize %s: %w", file, err)
		}
		if err := e.Scheduler().Drain(ctx); err != nil {
			return "", err
		}
	}

	reportAdvisories(e, cli, file)
	if !outcome.Applied {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			cli.Styles.Muted.Render(file+":"),
			cli.Styles.Muted.Render("skipped ("+outcome.Skipped+")"))
	}

	return writeResult(doc, file, flags)
}

func reportAdvisories(e *engine.Engine, cli *CLI, file string) {
	for {
		select {
		case a := <-e.Advisories():
			fmt.Fprintf(os.Stderr, "%s %s\n",
				cli.Styles.Warning.Render(file+":"),
				a.Reason)
		default:
			return
		}
	}
}

func writeResult(doc *dom.Document, file string, flags *applyFlags) (string, error) {
	out, err := doc.RenderString()
	if err != nil {
		return "", err
	}
	switch {
	case flags.write && file != "-":
		return "", os.WriteFile(file, []byte(out), 0644)
	case flags.output != "":
		return "", os.WriteFile(flags.output, []byte(out), 0644)
	default:
		return out, nil
	}
}
