package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inferd/pkg/errors"
)

func TestEchoPredictorValidate(t *testing.T) {
	p := &echoPredictor{}

	require.NoError(t, p.Validate(map[string]any{"prompt": "hi"}))

	err := p.Validate("not an object")
	var vset *apperrors.ValidationErrorSet
	require.ErrorAs(t, err, &vset)

	err = p.Validate(map[string]any{})
	require.ErrorAs(t, err, &vset)
	require.Len(t, vset.Errors, 1)
	assert.Equal(t, []string{"prompt"}, vset.Errors[0].Loc)
}

func TestEchoPredictorPredict(t *testing.T) {
	p := &echoPredictor{}

	out, err := p.Predict(context.Background(), map[string]any{"prompt": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"echo": "hi"}, out)
}

func TestEchoPredictorPredictHonorsContext(t *testing.T) {
	p := &echoPredictor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := p.Predict(ctx, map[string]any{"prompt": "hi", "delay_seconds": float64(30)})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
