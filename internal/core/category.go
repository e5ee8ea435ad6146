package core

import (
	"errors"
	"fmt"
)

// Category is one member of the fixed expense taxonomy. The zero value is not
// a valid category.
type Category uint8

const (
	Food Category = iota + 1
	Transportation
	Housing
	Entertainment
	Shopping
	Healthcare
	Education
	Travel
	Personal
	Other
)

var ErrUnknownCategory = errors.New("unknown category")

// machine name is what gets persisted, display name is what gets shown
var categoryNames = [...]struct {
	machine string
	display string
}{
	Food:           {"FOOD", "Food & Dining"},
	Transportation: {"TRANSPORTATION", "Transportation"},
	Housing:        {"HOUSING", "Housing & Utilities"},
	Entertainment:  {"ENTERTAINMENT", "Entertainment"},
	Shopping:       {"SHOPPING", "Shopping"},
	Healthcare:     {"HEALTHCARE", "Healthcare"},
	Education:      {"EDUCATION", "Education"},
	Travel:         {"TRAVEL", "Travel"},
	Personal:       {"PERSONAL", "Personal Care"},
	Other:          {"OTHER", "Other"},
}

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{
		Food, Transportation, Housing, Entertainment, Shopping,
		Healthcare, Education, Travel, Personal, Other,
	}
}

// ParseCategory resolves a machine name (e.g. "FOOD"). Matching is exact.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories() {
		if categoryNames[c].machine == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= Food && c <= Other
}

// Name returns the machine name used for persistence.
func (c Category) Name() string {
	if !c.Valid() {
		return ""
	}
	return categoryNames[c].machine
}

// DisplayName returns the human readable label.
func (c Category) DisplayName() string {
	if !c.Valid() {
		return ""
	}
	return categoryNames[c].display
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryNames[c].display
}
