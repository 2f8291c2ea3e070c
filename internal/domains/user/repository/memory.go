package repository

import (
	"context"
	"sync"
	"time"

	"monetization-backend/internal/domains/user/model"
)

type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]model.Profile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]model.Profile)}
}

func (r *MemoryProfileRepository) Get(_ context.Context, userID string) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return &model.Profile{UserID: userID}, nil
	}
	return &p, nil
}

func (r *MemoryProfileRepository) SetVerified(_ context.Context, userID string, verified bool) error {
	r.update(userID, func(p *model.Profile) { p.IsVerified = verified })
	return nil
}

func (r *MemoryProfileRepository) MarkAmbassador(_ context.Context, userID string) error {
	r.update(userID, func(p *model.Profile) {
		p.IsAmbassador = true
		p.IsVerified = true
	})
	return nil
}

func (r *MemoryProfileRepository) update(userID string, fn func(*model.Profile)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.profiles[userID]
	p.UserID = userID
	fn(&p)
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
}
