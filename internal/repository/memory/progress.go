package memory

import (
	"context"
	"sync"

	"github.com/readsync/kosync-server/internal/model"
)

var _ model.ProgressStore = (*ProgressRepository)(nil)

type progressKey struct {
	username string
	document string
}

// ProgressRepository is a process-local ProgressStore keyed by
// (username, document). The mutex makes upsert and point lookup atomic,
// so same-key operations never observe a partially written record.
type ProgressRepository struct {
	mu      sync.RWMutex
	records map[progressKey]model.Progress
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{
		records: make(map[progressKey]model.Progress),
	}
}

func (r *ProgressRepository) Get(ctx context.Context, username, document string) (model.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.records[progressKey{username: username, document: document}]
	if !ok {
		return model.Progress{}, model.ErrNotFound
	}

	return p, nil
}

func (r *ProgressRepository) Upsert(ctx context.Context, progress model.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[progressKey{username: progress.Username, document: progress.Document}] = progress

	return nil
}
