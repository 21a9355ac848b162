package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/stormstats/internal/models"
	"github.com/vytor/stormstats/internal/services"
)

// MockReplayService is a mock implementation of services.ReplayService
type MockReplayService struct {
	mock.Mock
}

func (m *MockReplayService) Analyze(ctx context.Context, path string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockReplayService) Submit(ctx context.Context, upload services.Upload) (*models.Replay, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Replay), args.Error(1)
}

func (m *MockReplayService) Process(ctx context.Context, replayID int64, path string) error {
	args := m.Called(ctx, replayID, path)
	return args.Error(0)
}

func (m *MockReplayService) GetReplay(ctx context.Context, id int64) (*models.Replay, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Replay), args.Error(1)
}

func (m *MockReplayService) ListReplays(ctx context.Context, filter models.ReplayFilter) ([]models.Replay, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Replay), args.Int(1), args.Error(2)
}

func (m *MockReplayService) PlayerHistory(ctx context.Context, battleTag string, limit int) ([]models.PlayerRecord, error) {
	args := m.Called(ctx, battleTag, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlayerRecord), args.Error(1)
}
