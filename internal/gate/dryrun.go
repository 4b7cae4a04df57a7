package gate

import (
	"context"
	"sync"

	"github.com/cx-foundry/cxsh/internal/schema"
)

// Simulator predicts the outcome of a command without executing it.
type Simulator interface {
	DryRun(ctx context.Context, commandText string) schema.DryRunResult
}

// Simulate is Gate 3. All dry runs are issued concurrently and joined as
// a unit before any result is inspected; a slow simulation delays the
// whole gate rather than producing partial results. Candidates whose
// simulation predicts failure are dropped; survivors carry their result
// as Preview, in original order.
func Simulate(ctx context.Context, sim Simulator, options []schema.CommandOption) []schema.CommandOption {
	results := make([]schema.DryRunResult, len(options))

	var wg sync.WaitGroup
	for i, opt := range options {
		wg.Add(1)
		go func(i int, commandText string) {
			defer wg.Done()
			results[i] = sim.DryRun(ctx, commandText)
		}(i, opt.Command)
	}
	wg.Wait()

	var viable []schema.CommandOption
	for i, opt := range options {
		result := results[i]
		if result.IndicatesFailure {
			continue
		}
		opt.Preview = &result
		viable = append(viable, opt)
	}
	return viable
}
