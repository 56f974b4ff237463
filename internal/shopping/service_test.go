package shopping

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"familymeal/internal/notify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakePlans struct {
	dishIDs []string
	err     error
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakePlans) PlannedDishIDs(ctx context.Context, familyID string, from, to time.Time) ([]string, error) {
	f.gotFrom, f.gotTo = from, to
	return f.dishIDs, f.err
}

type fakeNotifier struct {
	sent []notify.Message
}

func (f *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeArchive struct {
	key string
	err error
}

func (f *fakeArchive) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key = key
	return "https://cdn.test/" + key, nil
}

func TestGenerate(t *testing.T) {
	f, _, _ := tomatoOnion()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewService(f)
	s.now = func() time.Time { return fixed }

	list, err := s.Generate(context.Background(), Request{
		DishIDs: []string{"A", "B"},
		Manual:  []ManualEntry{{IngredientID: "2", Quantity: 0.5}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if list.Total != 2200 || len(list.Lines) != 2 {
		t.Fatalf("unexpected list %+v", list)
	}
	if !list.GeneratedAt.Equal(fixed) {
		t.Fatalf("expected GeneratedAt %v, got %v", fixed, list.GeneratedAt)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		failing bool
		want    error
	}{
		{"unknown dish", Request{DishIDs: []string{"A", "nope"}}, false, ErrDishNotFound},
		{"empty dish id", Request{DishIDs: []string{" "}}, false, ErrInvalidRequest},
		{"manual without id or name", Request{Manual: []ManualEntry{{Quantity: 1}}}, false, ErrInvalidRequest},
		{"manual negative quantity", Request{Manual: []ManualEntry{{Name: "Salt", Quantity: -1}}}, false, ErrInvalidRequest},
		{"store down", Request{DishIDs: []string{"A"}}, true, ErrAggregationUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := tomatoOnion()
			if tt.failing {
				f.err = errors.New("timeout")
			}

			_, err := NewService(f).Generate(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGenerate_RecordsMetrics(t *testing.T) {
	f, _, _ := tomatoOnion()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s := NewService(f, WithMetrics(m))

	if _, err := s.Generate(context.Background(), Request{DishIDs: []string{"A"}}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := s.Generate(context.Background(), Request{DishIDs: []string{"missing"}}); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(m.aggregations.WithLabelValues("ok")); got != 1 {
		t.Errorf("expected 1 ok aggregation, got %v", got)
	}
	if got := testutil.ToFloat64(m.aggregations.WithLabelValues("dish_not_found")); got != 1 {
		t.Errorf("expected 1 dish_not_found aggregation, got %v", got)
	}
}

func TestFromCalendar(t *testing.T) {
	f, _, _ := tomatoOnion()
	plans := &fakePlans{dishIDs: []string{"A", "B", "A"}}
	s := NewService(f, WithMealPlans(plans))

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)

	list, err := s.FromCalendar(context.Background(), "fam-1", from, to)
	if err != nil {
		t.Fatalf("from calendar: %v", err)
	}
	if list.Lines[0].Quantity != 5.5 {
		t.Fatalf("expected tomato 5.5, got %v", list.Lines[0].Quantity)
	}
	if !plans.gotFrom.Equal(from) || !plans.gotTo.Equal(to) {
		t.Fatalf("range not passed through: %v..%v", plans.gotFrom, plans.gotTo)
	}

	if _, err := s.FromCalendar(context.Background(), "fam-1", to, from); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for reversed range, got %v", err)
	}

	plans.err = errors.New("db down")
	if _, err := s.FromCalendar(context.Background(), "fam-1", from, to); !errors.Is(err, ErrAggregationUnavailable) {
		t.Fatalf("expected ErrAggregationUnavailable, got %v", err)
	}
}

func TestFromCalendar_SkipsDeletedDishes(t *testing.T) {
	f, _, _ := tomatoOnion()
	plans := &fakePlans{dishIDs: []string{"A", "B"}}
	s := NewService(f, WithMealPlans(plans))
	delete(f.dishes, "B")

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	list, err := s.FromCalendar(context.Background(), "fam-1", from, from.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("from calendar: %v", err)
	}
	if len(list.Lines) != 1 || list.Lines[0].Name != "Tomato" || list.Lines[0].Quantity != 2 {
		t.Fatalf("expected only dish A's tomato, got %+v", list.Lines)
	}
	if list.Total != 1000 {
		t.Fatalf("expected total 1000, got %v", list.Total)
	}

	if _, err := s.Generate(context.Background(), Request{DishIDs: []string{"A", "B"}}); !errors.Is(err, ErrDishNotFound) {
		t.Fatalf("explicit dish ids must still fail, got %v", err)
	}
}

func TestFromCalendar_RangeLimit(t *testing.T) {
	f, _, _ := tomatoOnion()
	plans := &fakePlans{dishIDs: []string{"A"}}
	s := NewService(f, WithMealPlans(plans))

	from := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2999, 12, 31, 0, 0, 0, 0, time.UTC)
	if _, err := s.FromCalendar(context.Background(), "fam-1", from, to); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if !plans.gotFrom.IsZero() {
		t.Fatalf("calendar must not be queried for an oversized range")
	}

	leap := time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.FromCalendar(context.Background(), "fam-1", leap, leap.AddDate(0, 0, 365)); err != nil {
		t.Fatalf("a full year must be accepted, got %v", err)
	}
}

func TestExportPDF(t *testing.T) {
	f, _, _ := tomatoOnion()
	archive := &fakeArchive{}
	s := NewService(f, WithArchive(archive))

	list, err := s.Generate(context.Background(), Request{DishIDs: []string{"A", "B"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	doc, url, err := s.ExportPDF(context.Background(), list, "Weekly shopping")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Fatalf("expected a PDF document")
	}
	if !strings.HasPrefix(archive.key, "shopping-lists/") || url != "https://cdn.test/"+archive.key {
		t.Fatalf("unexpected archive key %q url %q", archive.key, url)
	}

	archive.err = errors.New("bucket gone")
	doc, url, err = s.ExportPDF(context.Background(), list, "Weekly shopping")
	if err != nil || url != "" || len(doc) == 0 {
		t.Fatalf("expected document without url when archive fails, got url=%q err=%v", url, err)
	}
}

func TestEmail(t *testing.T) {
	f, _, _ := tomatoOnion()
	n := &fakeNotifier{}
	s := NewService(f, WithNotifier(n))

	list, err := s.Generate(context.Background(), Request{DishIDs: []string{"A", "B"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := s.Email(context.Background(), list, []string{"parent@family.test"}, "Groceries"); err != nil {
		t.Fatalf("email: %v", err)
	}
	if len(n.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(n.sent))
	}

	msg := n.sent[0]
	if msg.Subject != "Groceries" || len(msg.Attachments) != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Body, "Tomato: 3.5 kg (1750.00)") || !strings.Contains(msg.Body, "Total: 2050.00") {
		t.Fatalf("unexpected body:\n%s", msg.Body)
	}

	if err := s.Email(context.Background(), list, nil, "Groceries"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest without recipients, got %v", err)
	}
	if err := s.Email(context.Background(), list, []string{"not an address"}, "Groceries"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for a bad address, got %v", err)
	}
	if err := NewService(f).Email(context.Background(), list, []string{"a@b.c"}, "x"); !errors.Is(err, ErrNoNotifier) {
		t.Fatalf("expected ErrNoNotifier, got %v", err)
	}

	disabled := NewService(f, WithNotifier(notify.NoopNotifier{}))
	if err := disabled.Email(context.Background(), list, []string{"a@b.c"}, "x"); !errors.Is(err, ErrNoNotifier) {
		t.Fatalf("expected ErrNoNotifier when smtp is off, got %v", err)
	}
}

func TestParseRecipients(t *testing.T) {
	got, err := ParseRecipients([]string{"Parent <Parent@Family.test>", "parent@family.test", " kid@family.test "})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0] != "parent@family.test" || got[1] != "kid@family.test" {
		t.Fatalf("unexpected recipients %v", got)
	}

	for _, bad := range [][]string{nil, {""}, {"parent"}, {"a@b.c", "@nope"}} {
		if _, err := ParseRecipients(bad); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%q: expected ErrInvalidRequest, got %v", bad, err)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.1 + 0.2, "0.3"},
		{3.5, "3.5"},
		{2, "2"},
		{1.23456, "1.235"},
		{0.0004, "0"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FormatQuantity(tt.in); got != tt.want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatText_EmptyList(t *testing.T) {
	out := FormatText(&List{}, "Empty")
	if !strings.Contains(out, "Nothing to buy.") {
		t.Fatalf("unexpected output %q", out)
	}
}
