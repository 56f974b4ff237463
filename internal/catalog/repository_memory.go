package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps the catalog in memory. Safe for concurrent use.
// Listing preserves insertion order.
type MemoryRepository struct {
	mu          sync.RWMutex
	ingredients map[string]*Ingredient
	ingOrder    []string
	dishes      map[string]*Dish
	dishOrder   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		ingredients: make(map[string]*Ingredient),
		dishes:      make(map[string]*Dish),
	}
}

func (r *MemoryRepository) CreateIngredient(ctx context.Context, ing *Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ing.ID == "" {
		ing.ID = uuid.New().String()
	}
	if ing.CreatedAt.IsZero() {
		ing.CreatedAt = time.Now()
	}

	cp := *ing
	r.ingredients[ing.ID] = &cp
	r.ingOrder = append(r.ingOrder, ing.ID)
	return nil
}

func (r *MemoryRepository) UpdateIngredient(ctx context.Context, ing *Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.ingredients[ing.ID]
	if !ok {
		return ErrNotFound
	}

	cp := *ing
	cp.CreatedAt = cur.CreatedAt
	r.ingredients[ing.ID] = &cp
	return nil
}

func (r *MemoryRepository) DeleteIngredient(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ingredients[id]; !ok {
		return ErrNotFound
	}
	delete(r.ingredients, id)
	r.ingOrder = removeID(r.ingOrder, id)
	return nil
}

func (r *MemoryRepository) GetIngredient(ctx context.Context, id string) (*Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ing, ok := r.ingredients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ing
	return &cp, nil
}

func (r *MemoryRepository) FindIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := NormalizeName(name)
	for _, id := range r.ingOrder {
		ing := r.ingredients[id]
		if NormalizeName(ing.Name) == want {
			cp := *ing
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ListIngredients(ctx context.Context) ([]*Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Ingredient, 0, len(r.ingOrder))
	for _, id := range r.ingOrder {
		cp := *r.ingredients[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) SetIngredientPhoto(ctx context.Context, id string, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ing, ok := r.ingredients[id]
	if !ok {
		return ErrNotFound
	}
	ing.PhotoURL = url
	return nil
}

func (r *MemoryRepository) CreateDish(ctx context.Context, dish *Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dish.ID == "" {
		dish.ID = uuid.New().String()
	}
	if dish.CreatedAt.IsZero() {
		dish.CreatedAt = time.Now()
	}

	r.dishes[dish.ID] = copyDish(dish)
	r.dishOrder = append(r.dishOrder, dish.ID)
	return nil
}

func (r *MemoryRepository) GetDish(ctx context.Context, id string) (*Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.dishes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDish(d), nil
}

func (r *MemoryRepository) ListDishes(ctx context.Context) ([]*Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Dish, 0, len(r.dishOrder))
	for _, id := range r.dishOrder {
		out = append(out, copyDish(r.dishes[id]))
	}
	return out, nil
}

func (r *MemoryRepository) DeleteDish(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dishes[id]; !ok {
		return ErrNotFound
	}
	delete(r.dishes, id)
	r.dishOrder = removeID(r.dishOrder, id)
	return nil
}

func copyDish(d *Dish) *Dish {
	cp := *d
	cp.Items = append([]DishItem(nil), d.Items...)
	return &cp
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
