package calendar

import "sort"

// SortEntries orders entries by date, then slot, then creation time.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if da, db := DayOf(a.Date), DayOf(b.Date); !da.Equal(db) {
			return da.Before(db)
		}
		if a.Slot != b.Slot {
			return a.Slot.rank() < b.Slot.rank()
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
