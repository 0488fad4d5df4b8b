package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/readsync/kosync-server/internal/model"
)

// ProgressStore is a mock implementation of model.ProgressStore.
type ProgressStore struct {
	mock.Mock
}

func (m *ProgressStore) Get(ctx context.Context, username, document string) (model.Progress, error) {
	args := m.Called(ctx, username, document)
	return args.Get(0).(model.Progress), args.Error(1)
}

func (m *ProgressStore) Upsert(ctx context.Context, progress model.Progress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}
