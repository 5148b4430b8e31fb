package domain

// CategoryOther is the fallback category applied when an AI response names a
// category outside the taxonomy. Save-time validation never applies it.
const CategoryOther = "Other"

// Categories is the fixed spending taxonomy. It is the single source of truth
// shared by extraction prompts, response validation, manual entry forms and
// period summaries; order is significant, summary rows follow it.
var Categories = []string{
	"Food & Drink",
	"Groceries",
	"Transportation",
	"Shopping",
	"Utilities",
	"Entertainment",
	"Health & Wellness",
	"Travel",
	"Rent",
	CategoryOther,
}

// IsCategory reports whether s is an exact member of the taxonomy.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if s == c {
			return true
		}
	}
	return false
}

// NormalizeCategory returns s if it is a taxonomy member, CategoryOther
// otherwise. Only AI-response normalization may use this; the persistence
// boundary rejects unknown categories outright.
func NormalizeCategory(s string) string {
	if IsCategory(s) {
		return s
	}
	return CategoryOther
}
