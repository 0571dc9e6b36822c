package sessions

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
)

// MemoryRepository keeps sessions for the lifetime of the process only.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]*models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]*models.Session)}
}

func (r *MemoryRepository) Get(_ context.Context, profile string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[profile].Clone(), nil
}

func (r *MemoryRepository) Put(_ context.Context, profile string, s *models.Session) error {
	if err := validate(s); err != nil {
		return err
	}
	r.mu.Lock()
	r.data[profile] = s.Clone()
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, profile string) error {
	r.mu.Lock()
	delete(r.data, profile)
	r.mu.Unlock()
	return nil
}
