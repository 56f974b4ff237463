package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage is the object store used for ingredient photos.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type Service struct {
	repo    Repository
	storage Storage
}

func NewService(repo Repository, storage Storage) *Service {
	return &Service{repo: repo, storage: storage}
}

// --------------------------------------------------
// Ingredients
// --------------------------------------------------

func (s *Service) CreateIngredient(ctx context.Context, ing *Ingredient) (*Ingredient, error) {
	if err := validateIngredient(ing); err != nil {
		return nil, err
	}
	ing.Name = strings.TrimSpace(ing.Name)
	ing.Unit = strings.TrimSpace(ing.Unit)
	ing.Allergens = normalizeLabels(ing.Allergens)

	if err := s.repo.CreateIngredient(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *Service) UpdateIngredient(ctx context.Context, ing *Ingredient) (*Ingredient, error) {
	if err := validateIngredient(ing); err != nil {
		return nil, err
	}
	ing.Name = strings.TrimSpace(ing.Name)
	ing.Unit = strings.TrimSpace(ing.Unit)
	ing.Allergens = normalizeLabels(ing.Allergens)

	if err := s.repo.UpdateIngredient(ctx, ing); err != nil {
		return nil, err
	}
	return s.repo.GetIngredient(ctx, ing.ID)
}

func (s *Service) GetIngredient(ctx context.Context, id string) (*Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

func (s *Service) FindIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	return s.repo.FindIngredientByName(ctx, name)
}

func (s *Service) ListIngredients(ctx context.Context) ([]*Ingredient, error) {
	return s.repo.ListIngredients(ctx)
}

func (s *Service) DeleteIngredient(ctx context.Context, id string) error {
	return s.repo.DeleteIngredient(ctx, id)
}

// UploadIngredientPhoto stores the photo and records its URL on the ingredient.
func (s *Service) UploadIngredientPhoto(
	ctx context.Context,
	ingredientID string,
	body io.Reader,
	filename string,
) (string, error) {

	if s.storage == nil {
		return "", errors.New("photo storage not configured")
	}

	contentType, err := ValidateImageExtension(filename)
	if err != nil {
		return "", err
	}

	if _, err := s.repo.GetIngredient(ctx, ingredientID); err != nil {
		return "", err
	}

	key := fmt.Sprintf(
		"ingredients/%s/%s%s",
		ingredientID,
		uuid.New().String(),
		strings.ToLower(filepath.Ext(filename)),
	)

	url, err := s.storage.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetIngredientPhoto(ctx, ingredientID, url); err != nil {
		return "", err
	}
	return url, nil
}

// --------------------------------------------------
// Dishes
// --------------------------------------------------

// CreateDish validates the items and snapshots each ingredient's name and unit
// onto the dish so it can still be rendered if an ingredient is deleted later.
func (s *Service) CreateDish(ctx context.Context, name string, items []DishItem) (*Dish, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDish)
	}

	dish := &Dish{Name: name, Items: make([]DishItem, 0, len(items))}

	for _, item := range items {
		if item.IngredientID == "" {
			return nil, fmt.Errorf("%w: ingredient_id is required", ErrInvalidDish)
		}
		if math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) || item.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must be a non-negative number", ErrInvalidDish)
		}

		ing, err := s.repo.GetIngredient(ctx, item.IngredientID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownIngredient, item.IngredientID)
			}
			return nil, err
		}

		dish.Items = append(dish.Items, DishItem{
			IngredientID: ing.ID,
			Quantity:     item.Quantity,
			Name:         ing.Name,
			Unit:         ing.Unit,
		})
	}

	if err := s.repo.CreateDish(ctx, dish); err != nil {
		return nil, err
	}
	return dish, nil
}

func (s *Service) GetDish(ctx context.Context, id string) (*Dish, error) {
	return s.repo.GetDish(ctx, id)
}

func (s *Service) ListDishes(ctx context.Context) ([]*Dish, error) {
	return s.repo.ListDishes(ctx)
}

func (s *Service) DeleteDish(ctx context.Context, id string) error {
	return s.repo.DeleteDish(ctx, id)
}

func validateIngredient(ing *Ingredient) error {
	if ing == nil || strings.TrimSpace(ing.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidIngredient)
	}
	if strings.TrimSpace(ing.Unit) == "" {
		return fmt.Errorf("%w: unit is required", ErrInvalidIngredient)
	}
	if math.IsNaN(ing.UnitPrice) || math.IsInf(ing.UnitPrice, 0) || ing.UnitPrice < 0 {
		return fmt.Errorf("%w: unit_price must be a non-negative number", ErrInvalidIngredient)
	}
	return nil
}

func normalizeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = NormalizeName(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
