// Package engine wires detection, the mode controller, the scheduler, and
// the contrast optimizer into one per-document theming pipeline. The
// engine is the only component that reads settings; everything below it
// receives plain values.
package engine

import (
	"context"
	"fmt"

	"github.com/bnema/umbra/internal/config"
	"github.com/bnema/umbra/internal/detect"
	"github.com/bnema/umbra/internal/dom"
	"github.com/bnema/umbra/internal/logging"
	"github.com/bnema/umbra/internal/mode"
	"github.com/bnema/umbra/internal/optimize"
	"github.com/bnema/umbra/internal/schedule"
	"github.com/bnema/umbra/internal/strategy"
)

// Advisory is a user-facing notice, currently only emitted when a
// strategy degrades to a cheaper one mid-load.
type Advisory struct {
	Reason string
}

// Outcome reports what an Apply invocation decided and why.
type Outcome struct {
	// Applied is true when a strategy is now active on the document.
	Applied bool

	// Strategy is the active strategy kind when Applied.
	Strategy strategy.Kind

	// Skipped names the reason theming was withheld: "disabled" or
	// "already-dark". Empty when Applied.
	Skipped string

	// Detection holds the classifier's verdict when it ran.
	Detection *detect.Result
}

// Engine drives theming for a single document.
type Engine struct {
	doc        *dom.Document
	sched      *schedule.Scheduler
	detector   *detect.Detector
	controller *mode.Controller
	analyzer   *optimize.Analyzer

	advisories chan Advisory
	mods       strategy.Modifiers
	origin     string
}

// Option customizes engine construction.
type Option func(*Engine)

// WithDetector replaces the default already-dark classifier.
func WithDetector(d *detect.Detector) Option {
	return func(e *Engine) { e.detector = d }
}

// WithAnalyzer replaces the default contrast analyzer.
func WithAnalyzer(a *optimize.Analyzer) Option {
	return func(e *Engine) { e.analyzer = a }
}

// WithStrategyFactory replaces the strategy factory driving the mode
// controller.
func WithStrategyFactory(f mode.Factory) Option {
	return func(e *Engine) { e.controller = mode.New(e.doc, f) }
}

// New creates an engine for the document. The analyzer goroutine lives
// until Close; ctx bounds its lifetime as well.
func New(ctx context.Context, doc *dom.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:        doc,
		sched:      schedule.New(),
		advisories: make(chan Advisory, 4),
	}
	e.detector = detect.New()
	e.analyzer = optimize.NewAnalyzer(ctx)
	e.controller = mode.New(doc, func(kind strategy.Kind) strategy.Strategy {
		return strategy.New(kind, strategy.Options{
			Scheduler:  e.sched,
			OnFallback: e.advise,
		})
	})

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the analyzer. The document is left as is; call Clear
// first to restore it.
func (e *Engine) Close() {
	e.analyzer.Close()
}

// Scheduler exposes the chunk scheduler so callers can drive ticks, or
// hand it to schedule.Run for interval-based draining.
func (e *Engine) Scheduler() *schedule.Scheduler {
	return e.sched
}

// Advisories returns the channel fallback notices arrive on. The channel
// is buffered; unread notices beyond the buffer are dropped.
func (e *Engine) Advisories() <-chan Advisory {
	return e.advisories
}

func (e *Engine) advise(reason string) {
	select {
	case e.advisories <- Advisory{Reason: reason}:
	default:
	}
}

// Apply themes the document according to settings, merged with any
// override for origin. Detection gates the work unless ForceOverride is
// set; a dark verdict clears any active strategy and reports the
// evidence in the outcome.
func (e *Engine) Apply(ctx context.Context, settings config.Settings, origin string) (Outcome, error) {
	ctx = logging.WithComponent(ctx, "engine")
	log := logging.FromContext(ctx)

	e.origin = origin
	eff := settings.Effective(origin)

	if !eff.Enabled {
		e.controller.Clear(ctx)
		log.Debug().Str("origin", origin).Msg("theming disabled")
		return Outcome{Skipped: "disabled"}, nil
	}

	kind, err := strategy.ParseKind(eff.Strategy)
	if err != nil {
		return Outcome{}, fmt.Errorf("invalid strategy in settings: %w", err)
	}

	var detection *detect.Result
	if eff.DetectDark && !eff.ForceOverride {
		res := e.detector.IsAlreadyDark(ctx, e.doc)
		detection = &res
		if res.Dark {
			e.controller.Clear(ctx)
			log.Info().Str("origin", origin).Str("signal", string(res.Signal)).Msg("page already dark, skipping")
			return Outcome{Skipped: "already-dark", Detection: detection}, nil
		}
	}

	mods := eff.Modifiers()
	if err := e.controller.SetMode(ctx, kind, mods); err != nil {
		return Outcome{Detection: detection}, err
	}
	e.mods = mods

	log.Info().Str("origin", origin).Str("strategy", kind.String()).Msg("strategy applied")
	return Outcome{Applied: true, Strategy: kind, Detection: detection}, nil
}

// Reapply re-runs Apply for the same origin with fresh settings. This is
// the handler for the "settings changed" signal from the config watcher.
func (e *Engine) Reapply(ctx context.Context, settings config.Settings) (Outcome, error) {
	return e.Apply(ctx, settings, e.origin)
}

// Clear tears down the active strategy and restores the document.
func (e *Engine) Clear(ctx context.Context) {
	e.controller.Clear(ctx)
}

// Active returns the active strategy kind, ok=false when none is applied.
func (e *Engine) Active() (strategy.Kind, bool) {
	return e.controller.Active()
}

// Optimize samples the themed document, asks the analyzer for a contrast
// suggestion, and refreshes the active strategy with the adjusted
// modifiers. A nil outcome means no adjustment was needed.
func (e *Engine) Optimize(ctx context.Context) (*strategy.Modifiers, error) {
	if _, ok := e.controller.Active(); !ok {
		return nil, fmt.Errorf("no active strategy to optimize")
	}
	ctx = logging.WithComponent(ctx, "optimizer")
	log := logging.FromContext(ctx)

	pairs := optimize.Sample(e.doc, optimize.MaxSamples)
	if len(pairs) == 0 {
		return nil, nil
	}

	var suggestion optimize.Suggestion
	select {
	case suggestion = <-e.analyzer.Analyze(pairs):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if !suggestion.Suggested {
		log.Debug().Int("samples", len(pairs)).Msg("contrast within comfortable band")
		return nil, nil
	}

	mods := e.mods
	mods.Contrast = suggestion.Contrast
	mods = mods.Clamped()
	if mods == e.mods {
		return nil, nil
	}

	if err := e.controller.Refresh(ctx, mods); err != nil {
		return nil, err
	}
	e.mods = mods

	log.Info().Int("samples", len(pairs)).Int("contrast", mods.Contrast).Msg("contrast adjusted")
	return &mods, nil
}
