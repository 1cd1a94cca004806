package optimize

import (
	"context"

	"github.com/grafana/sobek"

	"github.com/bnema/umbra/internal/logging"
)

// Suggestion is the analyzer's reply: a contrast percentage, or nothing
// when the sampled contrast is already in the comfortable band.
type Suggestion struct {
	Contrast  int
	Suggested bool
}

type request struct {
	pairs []Pair
	reply chan Suggestion
}

// Analyzer runs contrast analysis in an isolated JavaScript context on its
// own goroutine, mirroring a worker split: the caller fires a batch and
// may wait on the single reply, or walk away. There is no timeout; if the
// context dies the previous modifiers simply stay in effect.
type Analyzer struct {
	requests chan request
	cancel   context.CancelFunc
}

// NewAnalyzer starts the analyzer context.
func NewAnalyzer(ctx context.Context) *Analyzer {
	ctx, cancel := context.WithCancel(ctx)
	a := &Analyzer{
		requests: make(chan request, 4),
		cancel:   cancel,
	}
	go a.loop(ctx)
	return a
}

// Close shuts the analyzer down. Outstanding requests get an unsuggested
// reply.
func (a *Analyzer) Close() {
	a.cancel()
}

// Analyze ships a sample batch to the analyzer and returns the channel the
// single reply will arrive on. The channel is buffered: the analyzer never
// blocks on a caller that stopped listening.
func (a *Analyzer) Analyze(pairs []Pair) <-chan Suggestion {
	reply := make(chan Suggestion, 1)
	select {
	case a.requests <- request{pairs: pairs, reply: reply}:
	default:
		// Queue full: drop rather than block, the next tick resamples.
		reply <- Suggestion{}
	}
	return reply
}

func (a *Analyzer) loop(ctx context.Context) {
	log := logging.FromContext(ctx)

	vm := sobek.New()
	var analyze sobek.Callable
	if _, err := vm.RunString(analyzerScript); err != nil {
		log.Error().Err(err).Msg("failed to initialize analyzer script")
	} else if fn, ok := sobek.AssertFunction(vm.Get("analyze")); ok {
		analyze = fn
	}

	for {
		select {
		case <-ctx.Done():
			// Drain so no caller waits forever on a dead analyzer.
			for {
				select {
				case req := <-a.requests:
					req.reply <- Suggestion{}
				default:
					return
				}
			}
		case req := <-a.requests:
			req.reply <- a.run(vm, analyze, req.pairs)
		}
	}
}

func (a *Analyzer) run(vm *sobek.Runtime, analyze sobek.Callable, pairs []Pair) Suggestion {
	if analyze == nil || len(pairs) == 0 {
		return Suggestion{}
	}

	arg := make([]map[string]string, len(pairs))
	for i, p := range pairs {
		arg[i] = map[string]string{"fg": p.Foreground, "bg": p.Background}
	}

	res, err := analyze(sobek.Undefined(), vm.ToValue(arg))
	if err != nil {
		return Suggestion{}
	}
	exported := res.Export()
	if exported == nil {
		return Suggestion{}
	}

	switch v := exported.(type) {
	case int64:
		return Suggestion{Contrast: int(v), Suggested: true}
	case float64:
		return Suggestion{Contrast: int(v), Suggested: true}
	default:
		return Suggestion{}
	}
}
