package document

import (
	"fmt"
	"strings"
)

// Category is one member of a closed set of topical buckets.
type Category string

const (
	Water          Category = "Water"
	Fire           Category = "Fire"
	Administrative Category = "Administrative"
	Other          Category = "Other"
)

// CategoryInfo pairs a category with the hint shown to the model.
type CategoryInfo struct {
	Name        Category
	Description string
}

// CategorySet is an ordered, closed set of categories with a designated
// fallback member for replies that match nothing.
type CategorySet struct {
	members  []CategoryInfo
	index    map[string]Category
	fallback Category
}

// DefaultCategories is the baseline four-bucket set.
var DefaultCategories = MustCategorySet(Other,
	CategoryInfo{Name: Water, Description: "floods, ports"},
	CategoryInfo{Name: Fire, Description: "wildfires, fire stations"},
	CategoryInfo{Name: Administrative, Description: "employees, establishments, admin support, etc."},
	CategoryInfo{Name: Other, Description: "anything else"},
)

// NewCategorySet builds a set. The fallback must be a member and names must
// be unique ignoring case.
func NewCategorySet(fallback Category, members ...CategoryInfo) (*CategorySet, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("category set is empty")
	}
	s := &CategorySet{
		members:  make([]CategoryInfo, 0, len(members)),
		index:    make(map[string]Category, len(members)),
		fallback: fallback,
	}
	for _, m := range members {
		key := normalizeCategory(string(m.Name))
		if key == "" {
			return nil, fmt.Errorf("category name is empty")
		}
		if _, dup := s.index[key]; dup {
			return nil, fmt.Errorf("duplicate category %q", m.Name)
		}
		s.index[key] = m.Name
		s.members = append(s.members, m)
	}
	if _, ok := s.index[normalizeCategory(string(fallback))]; !ok {
		return nil, fmt.Errorf("fallback category %q is not a member", fallback)
	}
	return s, nil
}

// MustCategorySet is NewCategorySet that panics on error.
func MustCategorySet(fallback Category, members ...CategoryInfo) *CategorySet {
	s, err := NewCategorySet(fallback, members...)
	if err != nil {
		panic(err)
	}
	return s
}

// Members returns the categories in declaration order.
func (s *CategorySet) Members() []CategoryInfo {
	out := make([]CategoryInfo, len(s.members))
	copy(out, s.members)
	return out
}

// Fallback returns the member used for unrecognized replies.
func (s *CategorySet) Fallback() Category {
	return s.fallback
}

// Lookup resolves a name to a member, ignoring case and surrounding
// punctuation.
func (s *CategorySet) Lookup(name string) (Category, bool) {
	c, ok := s.index[normalizeCategory(name)]
	return c, ok
}

// Parse maps a model reply to a member. Unrecognized replies resolve to the
// fallback with matched=false.
func (s *CategorySet) Parse(reply string) (c Category, matched bool) {
	if c, ok := s.Lookup(reply); ok {
		return c, true
	}
	// Replies like "Section: Fire" or "Fire section".
	var found []Category
	for _, word := range strings.FieldsFunc(reply, func(r rune) bool {
		return r == ' ' || r == ':' || r == '\n' || r == '\t' || r == ','
	}) {
		if c, ok := s.Lookup(word); ok && !containsCategory(found, c) {
			found = append(found, c)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return s.fallback, false
}

func containsCategory(list []Category, c Category) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

func normalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`*.!:;-_ ")
	return strings.ToLower(s)
}
