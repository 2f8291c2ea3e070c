package repository

import (
	"context"
	"sort"
	"sync"

	"monetization-backend/internal/domains/promocode/model"
)

// MemoryRepository keeps codes keyed by normalized code
type MemoryRepository struct {
	mu    sync.RWMutex
	codes map[string]model.PromoCode
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{codes: make(map[string]model.PromoCode)}
}

func (r *MemoryRepository) Create(_ context.Context, promo *model.PromoCode) error {
	key := model.NormalizeCode(promo.Code)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[key]; ok {
		return model.ErrDuplicateCode
	}
	cp := *promo
	cp.Code = key
	r.codes[key] = cp
	return nil
}

func (r *MemoryRepository) FindByCode(_ context.Context, code string) (*model.PromoCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.codes[model.NormalizeCode(code)]
	if !ok {
		return nil, model.ErrPromoNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) FindByOwner(_ context.Context, ownerUserID string) ([]*model.PromoCode, error) {
	return r.filter(func(p model.PromoCode) bool { return p.OwnerUserID == ownerUserID }), nil
}

func (r *MemoryRepository) List(context.Context) ([]*model.PromoCode, error) {
	return r.filter(func(model.PromoCode) bool { return true }), nil
}

func (r *MemoryRepository) filter(keep func(model.PromoCode) bool) []*model.PromoCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.PromoCode
	for _, p := range r.codes {
		if keep(p) {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *MemoryRepository) Delete(_ context.Context, code string) error {
	key := model.NormalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[key]; !ok {
		return model.ErrPromoNotFound
	}
	delete(r.codes, key)
	return nil
}

func (r *MemoryRepository) UpdateUsageCount(_ context.Context, code string, count int) error {
	key := model.NormalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.codes[key]; ok {
		p.UsageCount = count
		r.codes[key] = p
	}
	return nil
}
