package shopping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"familymeal/internal/middleware"

	"github.com/gin-gonic/gin"
)

type fakeAccess struct {
	owner  bool
	digest []string
}

func (f fakeAccess) IsOwner(ctx context.Context, familyID, userID string) (bool, error) {
	return f.owner && userID == "user-1", nil
}

func (f fakeAccess) DigestAddresses(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID != "user-1" {
		return nil, nil
	}
	return f.digest, nil
}

func setupRouter(f *fakeCatalog, owner bool, opts ...Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.KeyUserID, "user-1")
		c.Set(middleware.KeyUserEmail, "parent@family.test")
		c.Next()
	})

	access := fakeAccess{owner: owner, digest: []string{"home@family.test"}}
	NewHandler(NewService(f, opts...), access).Register(r.Group(""))
	return r
}

func doJSON(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Generate(t *testing.T) {
	f, _, _ := tomatoOnion()
	r := setupRouter(f, true)

	w := doJSON(r, http.MethodPost, "/shopping/lists", Request{DishIDs: []string{"A", "B"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var list List
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 2050 || len(list.Lines) != 2 {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestHandler_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		failing bool
		want    int
	}{
		{"unknown dish", Request{DishIDs: []string{"zzz"}}, false, http.StatusNotFound},
		{"bad manual entry", Request{Manual: []ManualEntry{{Quantity: 1}}}, false, http.StatusBadRequest},
		{"catalog down", Request{DishIDs: []string{"A"}}, true, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := tomatoOnion()
			if tt.failing {
				f.err = errors.New("connection reset")
			}
			r := setupRouter(f, true)

			w := doJSON(r, http.MethodPost, "/shopping/lists", tt.req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestHandler_ExportPDF(t *testing.T) {
	f, _, _ := tomatoOnion()
	r := setupRouter(f, true)

	w := doJSON(r, http.MethodPost, "/shopping/lists/pdf", map[string]any{
		"dish_ids": []string{"A"},
		"title":    "Sunday",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
}

func TestHandler_EmailDefaultsToCaller(t *testing.T) {
	f, _, _ := tomatoOnion()
	n := &fakeNotifier{}
	r := setupRouter(f, true, WithNotifier(n))

	w := doJSON(r, http.MethodPost, "/shopping/lists/email", map[string]any{
		"dish_ids": []string{"A"},
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(n.sent) != 1 || n.sent[0].To[0] != "parent@family.test" {
		t.Fatalf("unexpected messages %+v", n.sent)
	}

	r = setupRouter(f, true)
	w = doJSON(r, http.MethodPost, "/shopping/lists/email", map[string]any{"dish_ids": []string{"A"}})
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 without notifier, got %d", w.Code)
	}
}

func TestHandler_EmailRecipients(t *testing.T) {
	tests := []struct {
		name string
		to   []string
		want int
	}{
		{"family digest address", []string{"Home@Family.test"}, http.StatusAccepted},
		{"caller and family", []string{"parent@family.test", "home@family.test"}, http.StatusAccepted},
		{"stranger", []string{"someone@elsewhere.test"}, http.StatusForbidden},
		{"stranger among family", []string{"home@family.test", "someone@elsewhere.test"}, http.StatusForbidden},
		{"not an address", []string{"home at family"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := tomatoOnion()
			n := &fakeNotifier{}
			r := setupRouter(f, true, WithNotifier(n))

			w := doJSON(r, http.MethodPost, "/shopping/lists/email", map[string]any{
				"dish_ids": []string{"A"},
				"to":       tt.to,
			})
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if tt.want != http.StatusAccepted && len(n.sent) != 0 {
				t.Fatalf("nothing should be sent, got %+v", n.sent)
			}
		})
	}
}

func TestHandler_FromCalendar(t *testing.T) {
	f, _, _ := tomatoOnion()
	plans := &fakePlans{dishIDs: []string{"B"}}

	r := setupRouter(f, true, WithMealPlans(plans))
	w := doJSON(r, http.MethodGet, "/shopping/calendar?family_id=fam-1&from=2026-03-02&to=2026-03-08", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if plans.gotTo.Format(dateLayout) != "2026-03-08" {
		t.Fatalf("unexpected range end %v", plans.gotTo)
	}

	tests := []struct {
		name  string
		path  string
		owner bool
		want  int
	}{
		{"missing family", "/shopping/calendar", true, http.StatusBadRequest},
		{"bad date", "/shopping/calendar?family_id=fam-1&from=03/02/2026", true, http.StatusBadRequest},
		{"reversed range", "/shopping/calendar?family_id=fam-1&from=2026-03-08&to=2026-03-02", true, http.StatusBadRequest},
		{"not owner", "/shopping/calendar?family_id=fam-1", false, http.StatusForbidden},
		{"range too long", "/shopping/calendar?family_id=fam-1&from=1900-01-01&to=2999-12-31", true, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(f, tt.owner, WithMealPlans(plans))
			w := doJSON(r, http.MethodGet, tt.path, nil)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
