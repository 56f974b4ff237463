package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"familymeal/internal/catalog"
	"familymeal/internal/core"
)

// maxRange bounds list queries.
const maxRange = 366 * 24 * time.Hour

type Service struct {
	repo     Repository
	catalog  core.CatalogReader
	families core.FamilyAccess
}

func NewService(repo Repository, catalog core.CatalogReader, families core.FamilyAccess) *Service {
	return &Service{repo: repo, catalog: catalog, families: families}
}

// Plan schedules a dish. Several dishes may share a date and slot.
func (s *Service) Plan(ctx context.Context, userID string, e *Entry) (*Entry, error) {
	if err := s.authorize(ctx, e.FamilyID, userID); err != nil {
		return nil, err
	}

	e.Slot = Slot(strings.ToLower(strings.TrimSpace(string(e.Slot))))
	e.Note = strings.TrimSpace(e.Note)
	switch {
	case e.Date.IsZero():
		return nil, fmt.Errorf("%w: date is required", ErrInvalidEntry)
	case !e.Slot.Valid():
		return nil, fmt.Errorf("%w: slot must be one of breakfast, lunch, dinner, snack", ErrInvalidEntry)
	case e.DishID == "":
		return nil, fmt.Errorf("%w: dish_id is required", ErrInvalidEntry)
	}
	e.Date = DayOf(e.Date)

	dish, err := s.catalog.GetDish(ctx, e.DishID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDish, e.DishID)
	}
	if err != nil {
		return nil, err
	}
	e.DishName = dish.Name

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	log.Printf("[CALENDAR] family %s planned %s for %s %s", e.FamilyID, dish.Name, e.Date.Format("2006-01-02"), e.Slot)
	return e, nil
}

func (s *Service) Remove(ctx context.Context, userID, familyID, entryID string) error {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return err
	}

	e, err := s.repo.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if e.FamilyID != familyID {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, entryID)
}

func (s *Service) ListRange(ctx context.Context, userID, familyID string, from, to time.Time) ([]Entry, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}
	from, to = DayOf(from), DayOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalidView)
	}
	if to.Sub(from) > maxRange {
		return nil, fmt.Errorf("%w: range longer than a year", ErrInvalidView)
	}
	return s.repo.ListRange(ctx, familyID, from, to)
}

// View renders the month, week or day around anchor, moved by step views.
func (s *Service) View(ctx context.Context, userID, familyID string, kind ViewKind, anchor time.Time, step int) (*View, error) {
	if err := s.authorize(ctx, familyID, userID); err != nil {
		return nil, err
	}

	anchor, err := Navigate(kind, anchor, step)
	if err != nil {
		return nil, err
	}
	from, to, err := Bounds(kind, anchor)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListRange(ctx, familyID, from, to)
	if err != nil {
		return nil, err
	}
	return Build(kind, anchor, entries)
}

// PlannedDishIDs lists the dish of every entry in [from, to], one ID per
// entry, by date then slot. Callers are expected to have checked access.
func (s *Service) PlannedDishIDs(ctx context.Context, familyID string, from, to time.Time) ([]string, error) {
	entries, err := s.repo.ListRange(ctx, familyID, from, to)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.DishID)
	}
	return ids, nil
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
