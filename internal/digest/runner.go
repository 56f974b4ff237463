// Package digest emails each family the shopping list for the coming week.
package digest

import (
	"context"
	"fmt"
	"log"
	"time"

	"familymeal/internal/family"
	"familymeal/internal/shopping"
)

const horizonDays = 7

// Recipients lists the families that asked for a digest.
type Recipients interface {
	DigestRecipients(ctx context.Context) ([]*family.Family, error)
}

// Shopper builds and sends shopping lists.
type Shopper interface {
	FromCalendar(ctx context.Context, familyID string, from, to time.Time) (*shopping.List, error)
	Email(ctx context.Context, list *shopping.List, to []string, title string) error
}

type Runner struct {
	recipients Recipients
	shopper    Shopper
	now        func() time.Time
}

func NewRunner(recipients Recipients, shopper Shopper) *Runner {
	return &Runner{recipients: recipients, shopper: shopper, now: time.Now}
}

// Result summarizes one pass.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

// RunOnce sends one digest per family. A failure for one family is logged
// and does not stop the others.
func (r *Runner) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	families, err := r.recipients.DigestRecipients(ctx)
	if err != nil {
		return res, fmt.Errorf("list digest recipients: %w", err)
	}

	today := r.now().UTC()
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, horizonDays-1)

	for _, f := range families {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		list, err := r.shopper.FromCalendar(ctx, f.ID, from, to)
		if err != nil {
			log.Printf("[DIGEST] family %s: build list: %v", f.ID, err)
			res.Failed++
			continue
		}
		if len(list.Lines) == 0 {
			res.Skipped++
			continue
		}

		title := fmt.Sprintf("%s shopping list %s to %s", f.Name, from.Format("Jan 2"), to.Format("Jan 2"))
		if err := r.shopper.Email(ctx, list, []string{f.DigestEmail}, title); err != nil {
			log.Printf("[DIGEST] family %s: send: %v", f.ID, err)
			res.Failed++
			continue
		}
		res.Sent++
	}

	log.Printf("[DIGEST] pass done: sent=%d skipped=%d failed=%d", res.Sent, res.Skipped, res.Failed)
	return res, nil
}

// Run calls RunOnce immediately and then on every tick until ctx ends.
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			log.Printf("[DIGEST] %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
