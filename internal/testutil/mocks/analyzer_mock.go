package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/stormstats/internal/models"
)

// MockAnalyzer is a mock implementation of services.Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Run(ctx context.Context, path string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

// MockAnalysisService is a mock implementation of services.AnalysisService
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, path string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) ProcessReplay(ctx context.Context, replayID int64, path string) error {
	args := m.Called(ctx, replayID, path)
	return args.Error(0)
}
