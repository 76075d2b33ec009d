package oracle

import "context"

// Noop holds forever and keeps whatever is pending. Baseline for tests
// and dry runs.
type Noop struct{}

func (Noop) Evaluate(ctx context.Context, req Request) (Decision, error) {
	return HoldBecause("noop"), nil
}

func (Noop) Review(ctx context.Context, req ReviewRequest) (Verdict, error) {
	return Keep, nil
}
