package stock

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

var _ Repository = (*MemoryRepository)(nil)

type key struct {
	familyID     string
	ingredientID string
}

type MemoryRepository struct {
	mu    sync.Mutex
	items map[key]*Item
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[key]*Item)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.UpdatedAt = time.Now()
	cp := *item
	r.items[key{item.FamilyID, item.IngredientID}] = &cp
	return nil
}

func (r *MemoryRepository) Adjust(ctx context.Context, familyID, ingredientID string, delta float64, unit string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{familyID, ingredientID}
	cur, ok := r.items[k]
	if !ok {
		cur = &Item{FamilyID: familyID, IngredientID: ingredientID, Unit: unit}
		r.items[k] = cur
	}
	cur.Quantity = math.Max(cur.Quantity+delta, 0)
	cur.UpdatedAt = time.Now()

	cp := *cur
	return &cp, nil
}

func (r *MemoryRepository) Get(ctx context.Context, familyID, ingredientID string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[key{familyID, ingredientID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context, familyID string) ([]*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Item, 0)
	for k, it := range r.items {
		if k.familyID == familyID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID < out[j].IngredientID })
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, familyID, ingredientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{familyID, ingredientID}
	if _, ok := r.items[k]; !ok {
		return ErrNotFound
	}
	delete(r.items, k)
	return nil
}
