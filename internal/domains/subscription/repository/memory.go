package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"monetization-backend/internal/domains/subscription/model"
)

// MemoryRepository: một mutex cho toàn bộ map, Update giữ lock suốt fn giống FOR UPDATE
type MemoryRepository struct {
	mu   sync.Mutex
	subs map[string]*model.Subscription
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{subs: make(map[string]*model.Subscription)}
}

func (r *MemoryRepository) Create(_ context.Context, sub *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.ID]; ok {
		return model.ErrSubscriptionExists
	}
	r.subs[sub.ID] = sub.Clone()
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, model.ErrSubscriptionNotFound
	}
	return s.Clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, fn UpdateFunc) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.subs[id]
	if !ok {
		return nil, model.ErrSubscriptionNotFound
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.subs[id] = working.Clone()
	return working, nil
}

func (r *MemoryRepository) ListByStatus(_ context.Context, status model.Status) ([]*model.Subscription, error) {
	return r.filter(func(s *model.Subscription) bool { return s.Status == status }), nil
}

func (r *MemoryRepository) ListByCommissionStatus(_ context.Context, statuses ...model.CommissionStatus) ([]*model.Subscription, error) {
	return r.filter(func(s *model.Subscription) bool {
		for _, st := range statuses {
			if s.Commission.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (r *MemoryRepository) HasApprovedSubscription(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[userID]
	return ok && s.Status == model.StatusApproved, nil
}

func (r *MemoryRepository) CountApprovedByPromoCode(_ context.Context, code string) (int, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return len(r.filter(func(s *model.Subscription) bool {
		return s.Status == model.StatusApproved && s.PromoCodeValue() == code
	})), nil
}

func (r *MemoryRepository) filter(keep func(*model.Subscription) bool) []*model.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Subscription
	for _, s := range r.subs {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
