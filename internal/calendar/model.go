package calendar

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("calendar entry not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidEntry = errors.New("invalid calendar entry")
	ErrInvalidView  = errors.New("invalid calendar view")
	ErrUnknownDish  = errors.New("unknown dish")
)

type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnack     Slot = "snack"
)

// Slots in the order they happen during a day.
var Slots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

func (s Slot) Valid() bool {
	return s.rank() >= 0
}

func (s Slot) rank() int {
	for i, v := range Slots {
		if v == s {
			return i
		}
	}
	return -1
}

// Entry plans one dish for one meal of one day.
type Entry struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	Date      time.Time `json:"date"`
	Slot      Slot      `json:"slot"`
	DishID    string    `json:"dish_id"`
	DishName  string    `json:"dish_name,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ViewKind string

const (
	ViewMonth ViewKind = "month"
	ViewWeek  ViewKind = "week"
	ViewDay   ViewKind = "day"
)

// Day is one cell of a calendar view.
type Day struct {
	Date time.Time `json:"date"`
	// Outside marks padding days that belong to the neighbouring month.
	Outside bool    `json:"outside,omitempty"`
	Entries []Entry `json:"entries"`
}

// View is a rendered calendar page. Days run Monday first; a month view
// always holds whole weeks.
type View struct {
	Kind   ViewKind  `json:"kind"`
	Anchor time.Time `json:"anchor"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Prev   time.Time `json:"prev"`
	Next   time.Time `json:"next"`
	Days   []Day     `json:"days"`
}
