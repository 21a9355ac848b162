package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/stormstats/internal/models"
)

// MockReplayRepository is a mock implementation of repository.ReplayRepository
type MockReplayRepository struct {
	mock.Mock
}

func (m *MockReplayRepository) Create(ctx context.Context, replay models.Replay) (int64, error) {
	args := m.Called(ctx, replay)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReplayRepository) Get(ctx context.Context, id int64) (*models.Replay, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Replay), args.Error(1)
}

func (m *MockReplayRepository) List(ctx context.Context, filter models.ReplayFilter) ([]models.Replay, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Replay), args.Error(1)
}

func (m *MockReplayRepository) Count(ctx context.Context, filter models.ReplayFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockReplayRepository) UpdateStatus(ctx context.Context, id int64, status string, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockReplayRepository) SaveResult(ctx context.Context, id int64, result models.AnalysisResult) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockReplayRepository) PlayerHistory(ctx context.Context, battleTag string, limit int) ([]models.PlayerRecord, error) {
	args := m.Called(ctx, battleTag, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlayerRecord), args.Error(1)
}

func (m *MockReplayRepository) FailInterrupted(ctx context.Context, reason string) (int64, error) {
	args := m.Called(ctx, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReplayRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
