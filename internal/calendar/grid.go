package calendar

import (
	"fmt"
	"time"
)

// DayOf truncates t to midnight UTC of its calendar date.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Bounds returns the first and last day (inclusive) shown by a view.
// Month views are padded to whole Monday-first weeks.
func Bounds(kind ViewKind, anchor time.Time) (time.Time, time.Time, error) {
	anchor = DayOf(anchor)

	switch kind {
	case ViewDay:
		return anchor, anchor, nil
	case ViewWeek:
		from := startOfWeek(anchor)
		return from, from.AddDate(0, 0, 6), nil
	case ViewMonth:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return startOfWeek(first), startOfWeek(last).AddDate(0, 0, 6), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidView, kind)
	}
}

// Navigate moves anchor by step views. Month steps keep the day of month
// when possible and otherwise clamp to the target month's last day.
func Navigate(kind ViewKind, anchor time.Time, step int) (time.Time, error) {
	anchor = DayOf(anchor)

	switch kind {
	case ViewDay:
		return anchor.AddDate(0, 0, step), nil
	case ViewWeek:
		return anchor.AddDate(0, 0, 7*step), nil
	case ViewMonth:
		first := time.Date(anchor.Year(), anchor.Month()+time.Month(step), 1, 0, 0, 0, 0, time.UTC)
		day := anchor.Day()
		if n := daysIn(first); day > n {
			day = n
		}
		return first.AddDate(0, 0, day-1), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidView, kind)
	}
}

// Build lays entries out over the days of a view. Entries outside the view
// are ignored; within a day they keep slot order.
func Build(kind ViewKind, anchor time.Time, entries []Entry) (*View, error) {
	from, to, err := Bounds(kind, anchor)
	if err != nil {
		return nil, err
	}
	prev, _ := Navigate(kind, anchor, -1)
	next, _ := Navigate(kind, anchor, 1)

	anchor = DayOf(anchor)
	v := &View{Kind: kind, Anchor: anchor, From: from, To: to, Prev: prev, Next: next}

	index := make(map[time.Time]int)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		index[d] = len(v.Days)
		v.Days = append(v.Days, Day{
			Date:    d,
			Outside: kind == ViewMonth && d.Month() != anchor.Month(),
			Entries: []Entry{},
		})
	}

	sorted := append([]Entry(nil), entries...)
	SortEntries(sorted)
	for _, e := range sorted {
		if i, ok := index[DayOf(e.Date)]; ok {
			v.Days[i].Entries = append(v.Days[i].Entries, e)
		}
	}
	return v, nil
}

func startOfWeek(d time.Time) time.Time {
	// time.Weekday counts from Sunday
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
