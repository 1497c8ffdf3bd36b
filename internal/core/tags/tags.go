package tags

import (
	"sort"
	"strings"
)

// Tag is a case-sensitive identifier attached to places and events.
// Persisted tags are always normalized: trimmed, free of whitespace and '#',
// and non-empty.
type Tag struct {
	ID string `json:"id"`
}

// Category is one of a small fixed set of place classifications. On place
// writes the category id is merged into the tag set; the id keeps categories
// distinguishable from free-form tags.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// The built-in categories. The ids are stable and shared with clients.
var (
	CategoryNonProfit  = Category{ID: "2cd00bebec0c48ba9db761da48678134", Name: "non-profit"}
	CategoryCommercial = Category{ID: "77b3c33a92554bcf8e8c2c86cedd6f6f", Name: "commercial"}
	CategoryEvent      = Category{ID: "c2dc278a2d6a4b9b8a50cb606fc017ed", Name: "event"}
)

// AllCategories lists the built-in categories in a stable order.
func AllCategories() []Category {
	return []Category{CategoryNonProfit, CategoryCommercial, CategoryEvent}
}

// CategoryByID resolves a built-in category by id.
func CategoryByID(id string) (Category, bool) {
	for _, c := range AllCategories() {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// IsCategoryID reports whether the given tag is a category id.
func IsCategoryID(tag string) bool {
	_, ok := CategoryByID(tag)
	return ok
}

// MergeCategoryIDs merges category ids into a tag list prior to
// normalization. Category ids survive normalization untouched because they
// contain neither whitespace nor '#'.
func MergeCategoryIDs(categoryIDs, tagList []string) []string {
	merged := make([]string, 0, len(categoryIDs)+len(tagList))
	merged = append(merged, tagList...)
	merged = append(merged, categoryIDs...)
	return merged
}

// SplitCategories separates category ids from free-form tags in a normalized
// tag list.
func SplitCategories(tagList []string) (categories []Category, rest []string) {
	for _, t := range tagList {
		if c, ok := CategoryByID(t); ok {
			categories = append(categories, c)
		} else {
			rest = append(rest, t)
		}
	}
	return categories, rest
}

// Normalize sanitizes raw tag input: trim, split on ASCII spaces, strip all
// '#' characters, trim again, drop empties, sort, dedup. Normalizing an
// already normalized list is the identity.
func Normalize(tagList []string) []string {
	out := make([]string, 0, len(tagList))
	for _, raw := range tagList {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		for _, part := range strings.Split(trimmed, " ") {
			part = strings.TrimSpace(strings.ReplaceAll(part, "#", ""))
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	sort.Strings(out)
	dedup := out[:0]
	var prev string
	for i, t := range out {
		if i > 0 && t == prev {
			continue
		}
		dedup = append(dedup, t)
		prev = t
	}
	return dedup
}
