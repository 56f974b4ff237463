package family

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Family struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	DigestEmail string    `json:"digest_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Member struct {
	ID         string      `json:"id"`
	FamilyID   string      `json:"family_id"`
	Name       string      `json:"name"`
	BirthDate  *time.Time  `json:"birth_date,omitempty"`
	Conditions []Condition `json:"conditions"`
	CreatedAt  time.Time   `json:"created_at"`
}

type ConditionKind string

const (
	KindAllergy ConditionKind = "allergy"
	KindDisease ConditionKind = "disease"
)

// Condition is an allergy or a disease attached to a member.
type Condition struct {
	Kind  ConditionKind `json:"kind"`
	Label string        `json:"label"`
}

// UnmarshalJSON accepts either a bare label ("peanuts") or an object
// {"kind": "allergy", "label": "peanuts"}. A bare label has no kind; the
// caller fills it in from context.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*c = Condition{Label: label}
		return nil
	}

	var obj struct {
		Kind  ConditionKind `json:"kind"`
		Label string        `json:"label"`
		Name  string        `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: expected a string or an object", ErrInvalidCondition)
	}
	if obj.Label == "" {
		obj.Label = obj.Name
	}
	*c = Condition{Kind: obj.Kind, Label: obj.Label}
	return nil
}

// NormalizeConditions trims and lower-cases labels, applies defaultKind to
// conditions without one, and drops empty labels and duplicates.
func NormalizeConditions(defaultKind ConditionKind, in []Condition) ([]Condition, error) {
	out := make([]Condition, 0, len(in))
	seen := make(map[Condition]bool)

	for _, c := range in {
		c.Label = strings.ToLower(strings.TrimSpace(c.Label))
		c.Kind = ConditionKind(strings.ToLower(strings.TrimSpace(string(c.Kind))))
		if c.Kind == "" {
			c.Kind = defaultKind
		}
		if c.Kind != KindAllergy && c.Kind != KindDisease {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidCondition, c.Kind)
		}
		if c.Label == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// Labels returns the labels of the given kind.
func (m *Member) Labels(kind ConditionKind) []string {
	var out []string
	for _, c := range m.Conditions {
		if c.Kind == kind {
			out = append(out, c.Label)
		}
	}
	return out
}

// DishConflict names an ingredient of a dish that contains a family allergen.
type DishConflict struct {
	IngredientID string   `json:"ingredient_id"`
	Name         string   `json:"name"`
	Allergens    []string `json:"allergens"`
}
