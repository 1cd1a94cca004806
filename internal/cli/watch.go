package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/umbra/internal/config"
	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/engine"
	"github.com/bnema/umbra/internal/logging"
)

// NewWatchCmd creates the watch command: theme a file once, then re-theme
// it whenever the configuration changes on disk.
func NewWatchCmd() *cobra.Command {
	var origin string
	var output string

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Theme a file and re-theme it on config changes",
		Long: `Applies the configured strategy to the file, writes the result to
--output (default: <file>.dark.html), and keeps running: every change to
the config file re-themes the document with the new settings. Stop with
Ctrl-C; the original file is never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runWatch(args[0], origin, output)
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "origin whose overrides apply")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <file>.dark.html)")
	return cmd
}

func runWatch(file, origin, output string) error {
	if output == "" {
		output = file + ".dark.html"
	}

	cli, err := NewCLI()
	if err != nil {
		return err
	}
	defer closeQuietly(cli)

	ctx, stop := signal.NotifyContext(rootContext(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logging.FromContext(ctx)

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	doc, err := dom.Parse(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}

	e := engine.New(ctx, doc)
	defer e.Close()

	render := func(settings config.Settings) {
		if _, err := e.Apply(ctx, settings, origin); err != nil {
			log.Warn().Err(err).Msg("failed to re-theme document")
			return
		}
		if err := e.Scheduler().Drain(ctx); err != nil {
			return
		}
		out, err := doc.RenderString()
		if err != nil {
			log.Warn().Err(err).Msg("failed to render document")
			return
		}
		if err := os.WriteFile(output, []byte(out), 0644); err != nil {
			log.Warn().Err(err).Msg("failed to write output")
			return
		}
		log.Info().Str("output", output).Msg("document themed")
	}

	settings, err := cli.Settings(ctx)
	if err != nil {
		return err
	}
	render(settings)

	cli.Manager.OnSettingsChange(func(s config.Settings) {
		merged := s
		if err := cli.Store.MergeInto(ctx, &merged); err != nil {
			log.Warn().Err(err).Msg("failed to merge stored overrides")
		}
		render(merged)
	})
	if err := cli.Manager.Watch(); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}

	fmt.Println(cli.Styles.Muted.Render("watching config for changes, Ctrl-C to stop"))
	<-ctx.Done()
	return nil
}
