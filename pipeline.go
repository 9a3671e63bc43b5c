package jsonish

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/jsonish/schema"
)

// Result is the outcome of coercing one input of a batch.
type Result struct {
	Value *TypedValue
	Err   error
}

// CoerceAll coerces texts concurrently against the shared registry, at most
// Options.Concurrency at a time. Results are positional. Failures of single
// inputs are reported in their Result; the call itself fails only when ctx
// is done.
func CoerceAll(ctx context.Context, reg *schema.Registry, target schema.Type, texts []string, opts ...Options) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := pickOptions(opts)
	limit := o.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	if reg == nil {
		reg = schema.NewRegistry()
	}

	out := make([]Result, len(texts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, text := range texts {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			tv, err := Coerce(egCtx, reg, target, text, o)
			out[i] = Result{Value: tv, Err: err}
			if pe, ok := AsParsingError(err); ok && pe.Code == CodeCanceled {
				return err
			}
			return nil
		})
	}
	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		o.Logger.Debug("batch coercion canceled", zap.Int("inputs", len(texts)), zap.Error(err))
		return out, err
	}
	return out, nil
}
