package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// CategoryKind tags where a category comes from
type CategoryKind string

const (
	CategoryKindBuiltin CategoryKind = "builtin"
	CategoryKindCustom  CategoryKind = "custom"
)

// Built-in category ids. Declaration order is also display order.
const (
	CategoryFood        = "Food"
	CategorySalary      = "Salary"
	CategoryElectricity = "Electricity"
	CategoryRepair      = "Repair"
	CategoryFuel        = "Fuel"
	CategoryOther       = "Other"
)

// DefaultCategoryColor is used for ids that are not in the set
const DefaultCategoryColor = "#999"

// BuiltinCategory is a fixed category whose label comes from the translation table
type BuiltinCategory struct {
	ID    string
	Color string
}

// BuiltinCategories lists the fixed categories in declaration order
var BuiltinCategories = []BuiltinCategory{
	{ID: CategoryFood, Color: "#00C49F"},
	{ID: CategorySalary, Color: "#0088FE"},
	{ID: CategoryElectricity, Color: "#FFBB28"},
	{ID: CategoryRepair, Color: "#FF4444"},
	{ID: CategoryFuel, Color: "#8884d8"},
	{ID: CategoryOther, Color: DefaultCategoryColor},
}

// Category is a resolved category: a built-in with its translated label or a custom one
type Category struct {
	ID        string       `json:"id"`
	Label     string       `json:"label"`
	Color     string       `json:"color"`
	Kind      CategoryKind `json:"kind"`
	CreatedAt int64        `json:"createdAt,omitempty"`
}

// CustomCategory is the stored form of a user-created category
type CustomCategory struct {
	ID        string `json:"id,omitempty"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	CreatedAt int64  `json:"createdAt"`
}

// NewCustomCategory validates the label and assigns a random display color
func NewCustomCategory(label string, createdAt int64) (*CustomCategory, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrNameRequired
	}
	if len([]rune(label)) > MaxCategoryLabelLength {
		return nil, ErrNameTooLong
	}
	return &CustomCategory{
		Label:     label,
		Color:     RandomCategoryColor(),
		CreatedAt: createdAt,
	}, nil
}

// SetDocumentID implements Record
func (c *CustomCategory) SetDocumentID(id string) { c.ID = id }

// RandomCategoryColor returns an hsl() color with a random hue
func RandomCategoryColor() string {
	return fmt.Sprintf("hsl(%d, 70%%, 50%%)", rand.IntN(360))
}

// LabelFunc resolves a built-in category id to its display label
type LabelFunc func(id string) string

// CategorySet is the combined lookup table of built-in and custom categories.
// It is built once per snapshot and is read-only afterwards.
type CategorySet struct {
	ordered []Category
	byID    map[string]int
}

// NewCategorySet merges built-ins (labels resolved through label) with custom categories.
// Custom categories with an empty label or color are skipped, as are ids already taken.
func NewCategorySet(label LabelFunc, custom []*CustomCategory) *CategorySet {
	set := &CategorySet{
		ordered: make([]Category, 0, len(BuiltinCategories)+len(custom)),
		byID:    make(map[string]int, len(BuiltinCategories)+len(custom)),
	}
	for _, b := range BuiltinCategories {
		l := b.ID
		if label != nil {
			if translated := label(b.ID); translated != "" {
				l = translated
			}
		}
		set.add(Category{ID: b.ID, Label: l, Color: b.Color, Kind: CategoryKindBuiltin})
	}
	for _, c := range custom {
		if c == nil || c.ID == "" || c.Label == "" || c.Color == "" {
			continue
		}
		set.add(Category{ID: c.ID, Label: c.Label, Color: c.Color, Kind: CategoryKindCustom, CreatedAt: c.CreatedAt})
	}
	return set
}

func (s *CategorySet) add(c Category) {
	if _, exists := s.byID[c.ID]; exists {
		return
	}
	s.byID[c.ID] = len(s.ordered)
	s.ordered = append(s.ordered, c)
}

// All returns the categories in set order (built-ins first)
func (s *CategorySet) All() []Category {
	out := make([]Category, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Lookup finds a category by id
func (s *CategorySet) Lookup(id string) (Category, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Category{}, false
	}
	return s.ordered[i], true
}

// Contains reports whether the id is known
func (s *CategorySet) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Label resolves an id to its label, falling back to the raw id or "Other"
func (s *CategorySet) Label(id string) string {
	if c, ok := s.Lookup(id); ok {
		return c.Label
	}
	if id == "" {
		return CategoryOther
	}
	return id
}

// Color resolves an id to its color
func (s *CategorySet) Color(id string) string {
	if c, ok := s.Lookup(id); ok {
		return c.Color
	}
	return DefaultCategoryColor
}

// Len returns the number of categories in the set
func (s *CategorySet) Len() int {
	return len(s.ordered)
}
