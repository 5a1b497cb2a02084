// Package runner adapts a types.Predictor to the prediction lifecycle: it
// validates inputs, times runs, and translates the cancellation channel and
// the shutdown signal into context cancellation the engine can observe.
package runner

import (
	"context"
	stderrors "errors"
	"time"

	"inferd/internal/shutdown"
	"inferd/internal/types"
	"inferd/pkg/errors"
)

// ErrCanceled is returned by Run when the prediction was canceled before the
// engine produced an output.
var ErrCanceled = stderrors.New("prediction canceled")

// Runner drives one execution engine on behalf of the prediction slot.
type Runner struct {
	predictor types.Predictor
	shutdown  *shutdown.Shutdown
}

// New builds a runner around the engine supplied by the embedding application.
func New(predictor types.Predictor, sd *shutdown.Shutdown) *Runner {
	return &Runner{
		predictor: predictor,
		shutdown:  sd,
	}
}

// Validate checks an input against the engine's schema. The result is always
// a *errors.ValidationErrorSet so callers can annotate field locations.
func (r *Runner) Validate(input any) *errors.ValidationErrorSet {
	err := r.predictor.Validate(input)
	if err == nil {
		return nil
	}

	var vset *errors.ValidationErrorSet
	if stderrors.As(err, &vset) {
		return vset
	}

	return errors.NewValidationErrorSet(errors.ValidationError{
		Loc:  []string{},
		Msg:  err.Error(),
		Type: "value_error",
	})
}

// Run executes the input and reports the engine's wall time. The context
// handed to the engine is canceled when either the cancel channel or process
// shutdown fires; a run aborted by the cancel channel comes back as
// ErrCanceled, every other engine error passes through untouched.
func (r *Runner) Run(input any, cancel <-chan struct{}) (any, time.Duration, error) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	canceled := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-cancel:
			close(canceled)
			stop()
		case <-r.shutdown.Done():
			stop()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	output, err := r.predictor.Predict(ctx, input)
	predictTime := time.Since(start)

	stop()
	<-watcherDone

	if err != nil {
		select {
		case <-canceled:
			return nil, predictTime, ErrCanceled
		default:
		}
		if stderrors.Is(err, ErrCanceled) {
			return nil, predictTime, ErrCanceled
		}
		return nil, predictTime, err
	}

	return output, predictTime, nil
}
