package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"monetization-backend/internal/domains/withdrawal/model"
)

type MemoryRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.WithdrawalRequest
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[uuid.UUID]*model.WithdrawalRequest)}
}

func (r *MemoryRepository) Create(_ context.Context, w *model.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[w.ID]; ok {
		return model.ErrWithdrawalExists
	}
	r.rows[w.ID] = w.Clone()
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*model.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rows[id]
	if !ok {
		return nil, model.ErrWithdrawalNotFound
	}
	return w.Clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, fn UpdateFunc) (*model.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rows[id]
	if !ok {
		return nil, model.ErrWithdrawalNotFound
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.rows[id] = working.Clone()
	return working, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*model.WithdrawalRequest, error) {
	out := r.filter(func(w *model.WithdrawalRequest) bool { return w.UserID == userID })
	// mới nhất trước
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) ListByStatus(_ context.Context, status model.Status) ([]*model.WithdrawalRequest, error) {
	return r.filter(func(w *model.WithdrawalRequest) bool { return w.Status == status }), nil
}

func (r *MemoryRepository) filter(keep func(*model.WithdrawalRequest) bool) []*model.WithdrawalRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.WithdrawalRequest
	for _, w := range r.rows {
		if keep(w) {
			out = append(out, w.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
