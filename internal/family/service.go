package family

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"sort"
	"strings"

	"familymeal/internal/catalog"
)

// IngredientReader resolves the ingredients of a dish for allergen checks.
type IngredientReader interface {
	GetIngredient(ctx context.Context, id string) (*catalog.Ingredient, error)
}

type Service struct {
	repo        Repository
	ingredients IngredientReader
}

func NewService(repo Repository, ingredients IngredientReader) *Service {
	return &Service{repo: repo, ingredients: ingredients}
}

// --------------------------------------------------
// Families
// --------------------------------------------------

func (s *Service) CreateFamily(ctx context.Context, ownerID, name, digestEmail string) (*Family, error) {
	f := &Family{
		Name:        strings.TrimSpace(name),
		OwnerID:     ownerID,
		DigestEmail: strings.TrimSpace(digestEmail),
	}
	if err := validateFamily(f); err != nil {
		return nil, err
	}

	if err := s.repo.CreateFamily(ctx, f); err != nil {
		return nil, err
	}

	log.Printf("[FAMILY] created family %s for user %s", f.ID, ownerID)
	return f, nil
}

func (s *Service) ListMyFamilies(ctx context.Context, ownerID string) ([]*Family, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) GetFamily(ctx context.Context, userID, familyID string) (*Family, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetFamily(ctx, familyID)
}

func (s *Service) UpdateFamily(ctx context.Context, userID, familyID, name, digestEmail string) (*Family, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}

	f := &Family{
		ID:          familyID,
		Name:        strings.TrimSpace(name),
		OwnerID:     userID,
		DigestEmail: strings.TrimSpace(digestEmail),
	}
	if err := validateFamily(f); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFamily(ctx, f); err != nil {
		return nil, err
	}
	return s.repo.GetFamily(ctx, familyID)
}

// DigestRecipients lists the families that asked for the weekly digest.
func (s *Service) DigestRecipients(ctx context.Context) ([]*Family, error) {
	return s.repo.ListWithDigest(ctx)
}

// DigestAddresses returns the bare, lower-cased digest emails of the families
// ownerID owns.
func (s *Service) DigestAddresses(ctx context.Context, ownerID string) ([]string, error) {
	families, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, f := range families {
		if f.DigestEmail == "" {
			continue
		}
		addr, err := mail.ParseAddress(f.DigestEmail)
		if err != nil {
			continue
		}
		out = append(out, strings.ToLower(addr.Address))
	}
	return out, nil
}

// IsOwner reports whether userID owns familyID. An unknown family is simply
// not owned.
func (s *Service) IsOwner(ctx context.Context, familyID, userID string) (bool, error) {
	if familyID == "" || userID == "" {
		return false, nil
	}
	return s.repo.IsOwner(ctx, familyID, userID)
}

func (s *Service) authorize(ctx context.Context, familyID, userID string) error {
	ok, err := s.IsOwner(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// --------------------------------------------------
// Members
// --------------------------------------------------

func (s *Service) AddMember(ctx context.Context, userID string, m *Member) (*Member, error) {
	if err := s.authorize(ctx, m.FamilyID, userID); err != nil {
		return nil, err
	}
	if err := prepareMember(m); err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListMembers(ctx context.Context, userID, familyID string) ([]*Member, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, familyID)
}

func (s *Service) UpdateMember(ctx context.Context, userID string, m *Member) (*Member, error) {
	if err := s.memberInFamily(ctx, userID, m.FamilyID, m.ID); err != nil {
		return nil, err
	}
	if err := prepareMember(m); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return nil, err
	}
	return s.repo.GetMember(ctx, m.ID)
}

func (s *Service) RemoveMember(ctx context.Context, userID, familyID, memberID string) error {
	if err := s.memberInFamily(ctx, userID, familyID, memberID); err != nil {
		return err
	}
	return s.repo.DeleteMember(ctx, memberID)
}

func (s *Service) memberInFamily(ctx context.Context, userID, familyID, memberID string) error {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return err
	}
	cur, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if cur.FamilyID != familyID {
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Allergens
// --------------------------------------------------

// Allergens returns the sorted union of allergy labels across the family.
func (s *Service) Allergens(ctx context.Context, familyID string) ([]string, error) {
	members, err := s.repo.ListMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for _, m := range members {
		for _, label := range m.Labels(KindAllergy) {
			set[label] = true
		}
	}

	out := make([]string, 0, len(set))
	for label := range set {
		out = append(out, label)
	}
	sort.Strings(out)
	return out, nil
}

// CheckDish lists the dish ingredients whose allergens match a family
// allergy. Ingredients missing from the catalog are skipped.
func (s *Service) CheckDish(ctx context.Context, familyID string, dish *catalog.Dish) ([]DishConflict, error) {
	allergens, err := s.Allergens(ctx, familyID)
	if err != nil {
		return nil, err
	}

	conflicts := make([]DishConflict, 0)
	if len(allergens) == 0 {
		return conflicts, nil
	}

	family := make(map[string]bool, len(allergens))
	for _, a := range allergens {
		family[a] = true
	}

	seen := make(map[string]bool)
	for _, item := range dish.Items {
		if seen[item.IngredientID] {
			continue
		}
		seen[item.IngredientID] = true

		ing, err := s.ingredients.GetIngredient(ctx, item.IngredientID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load ingredient %s: %w", item.IngredientID, err)
		}

		var hits []string
		for _, a := range ing.Allergens {
			if family[catalog.NormalizeName(a)] {
				hits = append(hits, catalog.NormalizeName(a))
			}
		}
		if len(hits) > 0 {
			conflicts = append(conflicts, DishConflict{
				IngredientID: ing.ID,
				Name:         ing.Name,
				Allergens:    hits,
			})
		}
	}
	return conflicts, nil
}

func validateFamily(f *Family) error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFamily)
	}
	if f.DigestEmail != "" {
		if _, err := mail.ParseAddress(f.DigestEmail); err != nil {
			return fmt.Errorf("%w: invalid digest email", ErrInvalidFamily)
		}
	}
	return nil
}

func prepareMember(m *Member) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMember)
	}

	conditions, err := NormalizeConditions(KindAllergy, m.Conditions)
	if err != nil {
		return err
	}
	m.Conditions = conditions
	return nil
}
