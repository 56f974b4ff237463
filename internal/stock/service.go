package stock

import (
	"context"
	"errors"
	"fmt"
	"math"

	"familymeal/internal/catalog"
	"familymeal/internal/core"
)

type Service struct {
	repo     Repository
	catalog  core.CatalogReader
	families core.FamilyAccess
}

func NewService(repo Repository, catalog core.CatalogReader, families core.FamilyAccess) *Service {
	return &Service{repo: repo, catalog: catalog, families: families}
}

// Set replaces the quantity on hand. The unit is taken from the catalog.
func (s *Service) Set(ctx context.Context, userID, familyID, ingredientID string, quantity float64) (*Item, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		return nil, fmt.Errorf("%w: must be a non-negative number", ErrInvalidQuantity)
	}

	ing, err := s.ingredient(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	item := &Item{
		FamilyID:     familyID,
		IngredientID: ing.ID,
		Name:         ing.Name,
		Quantity:     quantity,
		Unit:         ing.Unit,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Adjust adds delta (negative to consume). The quantity is clamped at zero.
func (s *Service) Adjust(ctx context.Context, userID, familyID, ingredientID string, delta float64) (*Item, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("%w: delta must be finite", ErrInvalidQuantity)
	}

	ing, err := s.ingredient(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Adjust(ctx, familyID, ing.ID, delta, ing.Unit)
	if err != nil {
		return nil, err
	}
	item.Name = ing.Name
	return item, nil
}

func (s *Service) List(ctx context.Context, userID, familyID string) ([]*Item, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, familyID)
}

func (s *Service) Remove(ctx context.Context, userID, familyID, ingredientID string) error {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, familyID, ingredientID)
}

func (s *Service) ingredient(ctx context.Context, id string) (*catalog.Ingredient, error) {
	ing, err := s.catalog.GetIngredient(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIngredient, id)
	}
	return ing, err
}

func (s *Service) authorize(ctx context.Context, familyID, userID string) error {
	ok, err := s.families.IsOwner(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
