package shopping

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"familymeal/internal/catalog"
	"familymeal/internal/core"

	"golang.org/x/sync/errgroup"
)

const defaultLookupConcurrency = 8

// Aggregator merges the ingredient requirements of dishes and manual entries
// into one deduplicated list. It keeps no state between calls.
type Aggregator struct {
	catalog     core.CatalogReader
	concurrency int
}

func NewAggregator(catalog core.CatalogReader) *Aggregator {
	return &Aggregator{catalog: catalog, concurrency: defaultLookupConcurrency}
}

// contribution is one (ingredient, quantity) pair in caller order.
type contribution struct {
	ingredientID string
	name         string
	unit         string
	unitPrice    float64
	quantity     float64
}

// resolved holds the catalog lookups for one Aggregate call.
// A nil entry means the store answered "not found".
type resolved struct {
	mu     sync.Mutex
	byID   map[string]*catalog.Ingredient
	byName map[string]*catalog.Ingredient
}

// Aggregate returns one Line per distinct key, in the order each key was
// first encountered: dish items first (dish by dish), then manual entries.
//
// Non-finite or negative quantities count as zero. Ingredients the catalog
// does not know are merged using the caller-supplied name, unit and price.
// If the catalog cannot be reached the whole call fails with
// ErrAggregationUnavailable.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	dishes []catalog.Dish,
	manual []ManualEntry,
) ([]Line, error) {

	contribs := flatten(dishes, manual)

	res, err := a.resolve(ctx, contribs)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	lines := make([]Line, 0)

	for _, c := range contribs {
		key, line, ok := res.describe(c)
		if !ok {
			continue
		}

		i, seen := index[key]
		if !seen {
			index[key] = len(lines)
			lines = append(lines, line)
			i = len(lines) - 1
		}

		merge(&lines[i], line, seen, sanitize(c.quantity))
	}

	for i := range lines {
		lines[i].LineTotal = lines[i].UnitPrice * lines[i].Quantity
	}

	return lines, nil
}

// ComputeTotal sums the line totals. It is 0 for an empty list.
func ComputeTotal(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal
	}
	return total
}

func flatten(dishes []catalog.Dish, manual []ManualEntry) []contribution {
	var out []contribution

	for _, d := range dishes {
		for _, item := range d.Items {
			out = append(out, contribution{
				ingredientID: strings.TrimSpace(item.IngredientID),
				name:         item.Name,
				unit:         item.Unit,
				quantity:     item.Quantity,
			})
		}
	}

	for _, m := range manual {
		out = append(out, contribution{
			ingredientID: strings.TrimSpace(m.IngredientID),
			name:         m.Name,
			unit:         m.Unit,
			unitPrice:    m.UnitPrice,
			quantity:     m.Quantity,
		})
	}

	return out
}

// resolve looks up every distinct ingredient ID and every distinct name of
// ID-less entries. Lookups run concurrently; the results are only read after
// all of them finished, so completion order never affects the merge.
func (a *Aggregator) resolve(ctx context.Context, contribs []contribution) (*resolved, error) {
	res := &resolved{
		byID:   make(map[string]*catalog.Ingredient),
		byName: make(map[string]*catalog.Ingredient),
	}

	ids := make(map[string]bool)
	names := make(map[string]bool)
	for _, c := range contribs {
		switch {
		case c.ingredientID != "":
			ids[c.ingredientID] = true
		case catalog.NormalizeName(c.name) != "":
			names[catalog.NormalizeName(c.name)] = true
		}
	}

	if len(ids) == 0 && len(names) == 0 {
		return res, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for id := range ids {
		g.Go(func() error {
			ing, err := a.catalog.GetIngredient(gctx, id)
			if err != nil && !errors.Is(err, catalog.ErrNotFound) {
				return err
			}
			res.mu.Lock()
			res.byID[id] = ing
			res.mu.Unlock()
			return nil
		})
	}

	for name := range names {
		g.Go(func() error {
			ing, err := a.catalog.FindIngredientByName(gctx, name)
			if err != nil && !errors.Is(err, catalog.ErrNotFound) {
				return err
			}
			res.mu.Lock()
			res.byName[name] = ing
			res.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAggregationUnavailable, err)
	}
	return res, nil
}

// describe computes the key and the display data one contribution would give
// a new line. ok is false for entries with neither an ID nor a name.
func (r *resolved) describe(c contribution) (string, Line, bool) {
	var ing *catalog.Ingredient

	switch {
	case c.ingredientID != "":
		ing = r.byID[c.ingredientID]
		if ing == nil {
			return c.ingredientID, Line{
				Key:          c.ingredientID,
				IngredientID: c.ingredientID,
				Name:         fallbackName(c.name, c.ingredientID),
				Unit:         strings.TrimSpace(c.unit),
				UnitPrice:    sanitize(c.unitPrice),
			}, true
		}
	default:
		norm := catalog.NormalizeName(c.name)
		if norm == "" {
			return "", Line{}, false
		}
		ing = r.byName[norm]
		if ing == nil {
			key := "name:" + norm
			return key, Line{
				Key:       key,
				Name:      strings.TrimSpace(c.name),
				Unit:      strings.TrimSpace(c.unit),
				UnitPrice: sanitize(c.unitPrice),
			}, true
		}
	}

	price := sanitize(ing.UnitPrice)
	if price == 0 {
		price = sanitize(c.unitPrice)
	}

	return ing.ID, Line{
		Key:          ing.ID,
		IngredientID: ing.ID,
		Name:         ing.Name,
		Unit:         ing.Unit,
		UnitPrice:    price,
		PhotoURL:     ing.PhotoURL,
	}, true
}

// merge adds one contribution to its line. The first-seen unit is kept and
// any later, different unit is recorded as a conflict.
func merge(dst *Line, src Line, seen bool, quantity float64) {
	dst.Quantity += quantity

	if !seen {
		return
	}

	if dst.UnitPrice == 0 && src.UnitPrice > 0 {
		dst.UnitPrice = src.UnitPrice
	}

	switch {
	case dst.Unit == "":
		dst.Unit = src.Unit
	case src.Unit != "" && !strings.EqualFold(dst.Unit, src.Unit):
		for _, u := range dst.UnitConflicts {
			if strings.EqualFold(u, src.Unit) {
				return
			}
		}
		dst.UnitConflicts = append(dst.UnitConflicts, src.Unit)
	}
}

// sanitize maps NaN, ±Inf and negative values to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func fallbackName(name, id string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return id
}
