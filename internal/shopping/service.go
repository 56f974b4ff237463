package shopping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/mail"
	"strings"
	"time"

	"familymeal/internal/catalog"
	"familymeal/internal/core"
	"familymeal/internal/notify"

	"github.com/google/uuid"
)

// maxCalendarRange bounds FromCalendar queries.
const maxCalendarRange = 366 * 24 * time.Hour

// Archive stores rendered documents and returns their public URL.
type Archive interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type Service struct {
	catalog    core.CatalogReader
	aggregator *Aggregator
	plans      core.MealPlanReader
	renderer   *PDFRenderer
	notifier   notify.Notifier
	archive    Archive
	metrics    *Metrics
	now        func() time.Time
}

type Option func(*Service)

func WithMealPlans(plans core.MealPlanReader) Option {
	return func(s *Service) { s.plans = plans }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithArchive(a Archive) Option {
	return func(s *Service) { s.archive = a }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(catalog core.CatalogReader, opts ...Option) *Service {
	s := &Service{
		catalog:    catalog,
		aggregator: NewAggregator(catalog),
		renderer:   NewPDFRenderer(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate builds a shopping list from the requested dishes, in the order
// given, plus any manual entries.
func (s *Service) Generate(ctx context.Context, req Request) (*List, error) {
	return s.run(ctx, req, false)
}

// run builds and measures one list. With skipMissing, dish IDs the catalog
// does not know are logged and left out instead of failing the list.
func (s *Service) run(ctx context.Context, req Request, skipMissing bool) (*List, error) {
	started := time.Now()

	list, err := s.generate(ctx, req, skipMissing)
	if err != nil {
		s.metrics.observe(resultLabel(err), started, 0)
		return nil, err
	}

	s.metrics.observe("ok", started, len(list.Lines))
	log.Printf("[SHOPPING] generated list: %d dishes, %d manual, %d lines, total %.2f",
		len(req.DishIDs), len(req.Manual), len(list.Lines), list.Total)
	return list, nil
}

func (s *Service) generate(ctx context.Context, req Request, skipMissing bool) (*List, error) {
	if err := validateManual(req.Manual); err != nil {
		return nil, err
	}

	dishes := make([]catalog.Dish, 0, len(req.DishIDs))
	for _, id := range req.DishIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty dish id", ErrInvalidRequest)
		}

		dish, err := s.catalog.GetDish(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			if skipMissing {
				log.Printf("[SHOPPING] skipping planned dish %s: no longer in the catalog", id)
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrDishNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAggregationUnavailable, err)
		}
		dishes = append(dishes, *dish)
	}

	lines, err := s.aggregator.Aggregate(ctx, dishes, req.Manual)
	if err != nil {
		return nil, err
	}

	return &List{
		Lines:       lines,
		Total:       ComputeTotal(lines),
		GeneratedAt: s.now().UTC(),
	}, nil
}

// FromCalendar builds the list for every dish planned for the family
// between from and to, both inclusive. Planned dishes that were since
// deleted from the catalog are skipped.
func (s *Service) FromCalendar(ctx context.Context, familyID string, from, to time.Time) (*List, error) {
	if s.plans == nil {
		return nil, fmt.Errorf("%w: meal calendar not configured", ErrInvalidRequest)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalidRequest)
	}
	if to.Sub(from) > maxCalendarRange {
		return nil, fmt.Errorf("%w: range longer than a year", ErrInvalidRequest)
	}

	dishIDs, err := s.plans.PlannedDishIDs(ctx, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAggregationUnavailable, err)
	}

	return s.run(ctx, Request{DishIDs: dishIDs}, true)
}

// ExportPDF renders list. When an archive is configured the document is also
// uploaded and its URL returned; otherwise url is empty.
func (s *Service) ExportPDF(ctx context.Context, list *List, title string) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, list, title); err != nil {
		return nil, "", err
	}
	doc := buf.Bytes()

	if s.archive == nil {
		return doc, "", nil
	}

	key := fmt.Sprintf("shopping-lists/%s.pdf", uuid.New().String())
	url, err := s.archive.Upload(ctx, key, bytes.NewReader(doc), "application/pdf")
	if err != nil {
		// the document is still usable without the archive copy
		log.Printf("[SHOPPING] archive upload failed: %v", err)
		return doc, "", nil
	}
	return doc, url, nil
}

// Email sends list as a PDF attachment with a plain-text copy in the body.
func (s *Service) Email(ctx context.Context, list *List, to []string, title string) error {
	if s.notifier == nil {
		return ErrNoNotifier
	}
	to, err := ParseRecipients(to)
	if err != nil {
		return err
	}

	doc, _, err := s.ExportPDF(ctx, list, title)
	if err != nil {
		return err
	}

	err = s.notifier.Send(ctx, notify.Message{
		To:      to,
		Subject: title,
		Body:    FormatText(list, title),
		Attachments: []notify.Attachment{{
			Filename:    "shopping-list.pdf",
			ContentType: "application/pdf",
			Data:        doc,
		}},
	})
	if errors.Is(err, notify.ErrDisabled) {
		return ErrNoNotifier
	}
	return err
}

// ParseRecipients validates each address and returns the bare, lower-cased
// addresses without duplicates.
func ParseRecipients(to []string) ([]string, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrInvalidRequest)
	}

	seen := make(map[string]bool, len(to))
	out := make([]string, 0, len(to))
	for _, raw := range to {
		addr, err := mail.ParseAddress(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid recipient %q", ErrInvalidRequest, raw)
		}
		a := strings.ToLower(addr.Address)
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

func validateManual(entries []ManualEntry) error {
	for i, m := range entries {
		if strings.TrimSpace(m.IngredientID) == "" && strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: manual entry %d needs an ingredient id or a name", ErrInvalidRequest, i)
		}
		if m.Quantity < 0 || math.IsNaN(m.Quantity) {
			return fmt.Errorf("%w: manual entry %d has an invalid quantity", ErrInvalidRequest, i)
		}
		if m.UnitPrice < 0 {
			return fmt.Errorf("%w: manual entry %d has a negative unit price", ErrInvalidRequest, i)
		}
	}
	return nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrAggregationUnavailable):
		return "unavailable"
	case errors.Is(err, ErrDishNotFound):
		return "dish_not_found"
	default:
		return "invalid"
	}
}
