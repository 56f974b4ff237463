package shopping

import (
	"context"
	"sync"

	"familymeal/internal/catalog"
)

// fakeCatalog is an in-memory CatalogReader that can be told to fail.
type fakeCatalog struct {
	mu          sync.Mutex
	ingredients map[string]*catalog.Ingredient
	dishes      map[string]*catalog.Dish
	err         error
	lookups     int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		ingredients: make(map[string]*catalog.Ingredient),
		dishes:      make(map[string]*catalog.Dish),
	}
}

func (f *fakeCatalog) addIngredient(id, name, unit string, price float64) {
	f.ingredients[id] = &catalog.Ingredient{ID: id, Name: name, Unit: unit, UnitPrice: price}
}

func (f *fakeCatalog) addDish(id string, items ...catalog.DishItem) catalog.Dish {
	d := catalog.Dish{ID: id, Name: "dish " + id, Items: items}
	f.dishes[id] = &d
	return d
}

func (f *fakeCatalog) GetIngredient(ctx context.Context, id string) (*catalog.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++

	if f.err != nil {
		return nil, f.err
	}
	ing, ok := f.ingredients[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *ing
	return &cp, nil
}

func (f *fakeCatalog) FindIngredientByName(ctx context.Context, name string) (*catalog.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++

	if f.err != nil {
		return nil, f.err
	}
	for _, ing := range f.ingredients {
		if catalog.NormalizeName(ing.Name) == catalog.NormalizeName(name) {
			cp := *ing
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) GetDish(ctx context.Context, id string) (*catalog.Dish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.dishes[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func item(id string, qty float64) catalog.DishItem {
	return catalog.DishItem{IngredientID: id, Quantity: qty}
}

// tomatoOnion builds the two-dish fixture used by several tests:
// A = {Tomato 2}, B = {Tomato 1.5, Onion 1}.
func tomatoOnion() (*fakeCatalog, catalog.Dish, catalog.Dish) {
	f := newFakeCatalog()
	f.addIngredient("1", "Tomato", "kg", 500)
	f.addIngredient("2", "Onion", "kg", 300)
	a := f.addDish("A", item("1", 2))
	b := f.addDish("B", item("1", 1.5), item("2", 1))
	return f, a, b
}
