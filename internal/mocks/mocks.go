// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPredictor is a mock implementation of types.Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Validate(input any) error {
	args := m.Called(input)
	return args.Error(0)
}

func (m *MockPredictor) Predict(ctx context.Context, input any) (any, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0), args.Error(1)
}
