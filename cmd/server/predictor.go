package main

import (
	"context"
	"time"

	"inferd/pkg/errors"
)

// echoPredictor is the built-in engine used when the worker runs standalone.
// It expects {"prompt": string, "delay_seconds": number?} and echoes the
// prompt back after the optional delay. Real deployments call server.Run
// with their own engine.
type echoPredictor struct{}

func (e *echoPredictor) Validate(input any) error {
	fields, ok := input.(map[string]any)
	if !ok {
		return errors.NewValidationErrorSet(errors.ValidationError{
			Loc:  []string{},
			Msg:  "input must be an object",
			Type: "type_error",
		})
	}

	if _, ok := fields["prompt"].(string); !ok {
		return errors.NewValidationErrorSet(errors.ValidationError{
			Loc:  []string{"prompt"},
			Msg:  "prompt is required and must be a string",
			Type: "value_error",
		})
	}

	return nil
}

func (e *echoPredictor) Predict(ctx context.Context, input any) (any, error) {
	fields := input.(map[string]any)

	if delay, ok := fields["delay_seconds"].(float64); ok && delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(delay * float64(time.Second))):
		}
	}

	return map[string]any{"echo": fields["prompt"]}, nil
}
