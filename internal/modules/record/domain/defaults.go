package domain

import "studyhub/internal/platform/slug"

// DefaultCategories is what a fresh install shows before the user has saved
// any category. Ids are derived from names so repeated reads agree.
func DefaultCategories() []Category {
	seed := []struct {
		name  string
		color Color
	}{
		{"Math", NamedColor("blue")},
		{"Science", NamedColor("green")},
		{"Languages", NamedColor("peach")},
		{"History", NamedColor("yellow")},
		{"Programming", NamedColor("mauve")},
		{"Reading", HexColor("#f5c2e7")},
	}
	out := make([]Category, 0, len(seed))
	for _, s := range seed {
		out = append(out, Category{ID: slug.Key("subject", s.name), Name: s.name, Color: s.color})
	}
	return out
}
