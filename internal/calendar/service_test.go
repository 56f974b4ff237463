package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"familymeal/internal/catalog"
	"familymeal/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ownerOnly string

func (o ownerOnly) IsOwner(ctx context.Context, familyID, userID string) (bool, error) {
	return userID == string(o), nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	cat := catalog.NewMemoryRepository()
	ctx := context.Background()
	for _, id := range []string{"dal", "poha", "rajma"} {
		if err := cat.CreateDish(ctx, &catalog.Dish{ID: id, Name: id}); err != nil {
			t.Fatalf("seed dish: %v", err)
		}
	}
	return NewService(NewMemoryRepository(), cat, ownerOnly("owner"))
}

func TestPlan_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
		user  string
		want  error
	}{
		{"missing date", Entry{FamilyID: "f", Slot: SlotLunch, DishID: "dal"}, "owner", ErrInvalidEntry},
		{"bad slot", Entry{FamilyID: "f", Date: date(2026, 3, 2), Slot: "brunch", DishID: "dal"}, "owner", ErrInvalidEntry},
		{"missing dish", Entry{FamilyID: "f", Date: date(2026, 3, 2), Slot: SlotLunch}, "owner", ErrInvalidEntry},
		{"unknown dish", Entry{FamilyID: "f", Date: date(2026, 3, 2), Slot: SlotLunch, DishID: "pizza"}, "owner", ErrUnknownDish},
		{"not owner", Entry{FamilyID: "f", Date: date(2026, 3, 2), Slot: SlotLunch, DishID: "dal"}, "guest", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			if _, err := s.Plan(ctx, tt.user, &e); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPlannedDishIDs_OrderedByDateThenSlot(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	plan := []Entry{
		{FamilyID: "f", Date: date(2026, 3, 3), Slot: SlotBreakfast, DishID: "poha"},
		{FamilyID: "f", Date: date(2026, 3, 2), Slot: SlotDinner, DishID: "rajma"},
		{FamilyID: "f", Date: date(2026, 3, 2), Slot: "Lunch", DishID: "dal"},
		{FamilyID: "f", Date: date(2026, 3, 9), Slot: SlotLunch, DishID: "dal"},
		{FamilyID: "other", Date: date(2026, 3, 2), Slot: SlotLunch, DishID: "dal"},
	}
	for i := range plan {
		if _, err := s.Plan(ctx, "owner", &plan[i]); err != nil {
			t.Fatalf("plan %d: %v", i, err)
		}
	}

	ids, err := s.PlannedDishIDs(ctx, "f", date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("planned: %v", err)
	}
	if want := []string{"dal", "rajma", "poha"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestRemove_ChecksFamily(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	e := &Entry{FamilyID: "f", Date: date(2026, 3, 2), Slot: SlotLunch, DishID: "dal"}
	if _, err := s.Plan(ctx, "owner", e); err != nil {
		t.Fatalf("plan: %v", err)
	}

	if err := s.Remove(ctx, "owner", "g", e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another family, got %v", err)
	}
	if err := s.Remove(ctx, "owner", "f", e.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
}

func TestListRange_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.ListRange(ctx, "owner", "f", date(2026, 3, 8), date(2026, 3, 2)); !errors.Is(err, ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView for reversed range, got %v", err)
	}
	if _, err := s.ListRange(ctx, "owner", "f", date(2026, 1, 1), date(2028, 1, 1)); !errors.Is(err, ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView for long range, got %v", err)
	}
}

func TestHandler_PlanAndView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.KeyUserID, "owner")
		c.Next()
	})
	NewHandler(newTestService(t)).Register(r.Group(""))

	body := `{"date": "2026-03-02", "slot": "dinner", "dish_id": "rajma", "note": "extra rice"}`
	req := httptest.NewRequest(http.MethodPost, "/families/f/calendar/entries", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/families/f/calendar?view=week&date=2026-02-23&step=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var v View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(v.Days) != 7 || len(v.Days[0].Entries) != 1 || v.Days[0].Entries[0].DishName != "rajma" {
		t.Fatalf("unexpected view %+v", v)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/families/f/calendar?view=year", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad view, got %d", w.Code)
	}
}
