package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"monetization-backend/internal/domains/ambassador/model"
)

type MemoryRepository struct {
	mu   sync.Mutex
	apps map[string]*model.Application
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{apps: make(map[string]*model.Application)}
}

func (r *MemoryRepository) FindByUserID(_ context.Context, userID string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[userID]
	if !ok {
		return nil, model.ErrApplicationNotFound
	}
	return app.Clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, userID string, fn UpdateFunc) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var working *model.Application
	if current, ok := r.apps[userID]; ok {
		working = current.Clone()
	} else {
		working = model.NewApplication(userID, time.Now().UTC())
	}

	if err := fn(working); err != nil {
		return nil, err
	}
	r.apps[userID] = working.Clone()
	return working, nil
}

func (r *MemoryRepository) ListByStatus(_ context.Context, status model.Status) ([]*model.Application, error) {
	return r.filter(func(a *model.Application) bool { return a.Status == status }), nil
}

func (r *MemoryRepository) ListWithLedger(context.Context) ([]*model.Application, error) {
	return r.filter(func(a *model.Application) bool { return len(a.History) > 0 }), nil
}

func (r *MemoryRepository) filter(keep func(*model.Application) bool) []*model.Application {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Application
	for _, a := range r.apps {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out
}
