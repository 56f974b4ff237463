package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"familymeal/internal/auth"
	"familymeal/internal/calendar"
	"familymeal/internal/catalog"
	"familymeal/internal/family"
	"familymeal/internal/notify"
	"familymeal/internal/shopping"
	"familymeal/internal/stock"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "router-test-secret")

	reg := prometheus.NewRegistry()
	cat := catalog.NewMemoryRepository()
	families := family.NewService(family.NewMemoryRepository(), cat)
	plans := calendar.NewService(calendar.NewMemoryRepository(), cat, families)
	shop := shopping.NewService(cat,
		shopping.WithMealPlans(plans),
		shopping.WithNotifier(notify.NoopNotifier{}),
		shopping.WithMetrics(shopping.NewMetrics(reg)),
	)

	return NewRouter(Deps{
		Auth:     auth.NewHandler(auth.NewService(auth.NewInMemoryUserRepository())),
		Catalog:  catalog.NewHandler(catalog.NewService(cat, nil)),
		Family:   family.NewHandler(families, cat),
		Stock:    stock.NewHandler(stock.NewService(stock.NewMemoryRepository(), cat, families)),
		Calendar: calendar.NewHandler(plans),
		Shopping: shopping.NewHandler(shop, families),
		Metrics:  reg,
	})
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/ingredients", "/families", "/auth/me"} {
		if w := do(r, http.MethodGet, path, "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestEndToEndShoppingList(t *testing.T) {
	r := newTestRouter(t)

	do(r, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Parent", "email": "parent@family.test", "password": "secret",
	})
	w := do(r, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "parent@family.test", "password": "secret",
	})
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	tok := login.Token

	var tomato, onion catalog.Ingredient
	w = do(r, http.MethodPost, "/ingredients", tok, map[string]any{"name": "Tomato", "unit": "kg", "unit_price": 500})
	_ = json.Unmarshal(w.Body.Bytes(), &tomato)
	w = do(r, http.MethodPost, "/ingredients", tok, map[string]any{"name": "Onion", "unit": "kg", "unit_price": 300})
	_ = json.Unmarshal(w.Body.Bytes(), &onion)
	if tomato.ID == "" || onion.ID == "" {
		t.Fatalf("ingredient creation failed: %s", w.Body.String())
	}

	var a, b catalog.Dish
	w = do(r, http.MethodPost, "/dishes", tok, map[string]any{
		"name":  "Salad",
		"items": []map[string]any{{"ingredient_id": tomato.ID, "quantity": 2}},
	})
	_ = json.Unmarshal(w.Body.Bytes(), &a)
	w = do(r, http.MethodPost, "/dishes", tok, map[string]any{
		"name": "Curry",
		"items": []map[string]any{
			{"ingredient_id": tomato.ID, "quantity": 1.5},
			{"ingredient_id": onion.ID, "quantity": 1},
		},
	})
	_ = json.Unmarshal(w.Body.Bytes(), &b)
	if a.ID == "" || b.ID == "" {
		t.Fatalf("dish creation failed: %s", w.Body.String())
	}

	var fam family.Family
	w = do(r, http.MethodPost, "/families", tok, map[string]string{"name": "Home"})
	_ = json.Unmarshal(w.Body.Bytes(), &fam)

	for _, plan := range []map[string]string{
		{"date": "2026-03-02", "slot": "lunch", "dish_id": a.ID},
		{"date": "2026-03-03", "slot": "dinner", "dish_id": b.ID},
	} {
		if w := do(r, http.MethodPost, "/families/"+fam.ID+"/calendar/entries", tok, plan); w.Code != http.StatusCreated {
			t.Fatalf("plan failed: %d %s", w.Code, w.Body.String())
		}
	}

	w = do(r, http.MethodGet, "/shopping/calendar?family_id="+fam.ID+"&from=2026-03-02&to=2026-03-08", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var list shopping.List
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2050 || len(list.Lines) != 2 {
		t.Fatalf("unexpected list %+v", list)
	}

	w = do(r, http.MethodGet, "/metrics", "", nil)
	if !strings.Contains(w.Body.String(), `familymeal_shopping_aggregations_total{result="ok"} 1`) {
		t.Fatalf("metrics missing aggregation counter:\n%s", w.Body.String())
	}

	// smtp is not configured, so email must not claim success
	w = do(r, http.MethodPost, "/shopping/lists/email", tok, map[string]any{"dish_ids": []string{a.ID}})
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 without smtp, got %d: %s", w.Code, w.Body.String())
	}

	// a dish deleted after planning drops out of the calendar list
	if w := do(r, http.MethodDelete, "/dishes/"+b.ID, tok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete dish: %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/shopping/calendar?family_id="+fam.ID+"&from=2026-03-02&to=2026-03-08", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after dish deletion, got %d: %s", w.Code, w.Body.String())
	}
	list = shopping.List{}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1000 || len(list.Lines) != 1 {
		t.Fatalf("expected only the salad's tomatoes, got %+v", list)
	}
}
