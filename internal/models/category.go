package models

import "strings"

// Budget categories recognised by the icon table and the auto-categorizer.
// Any other category string is accepted and rendered with FallbackIcon.
const (
	CategoryFood          = "Food"
	CategoryGroceries     = "Groceries"
	CategoryTransport     = "Transport"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryBills         = "Bills"
	CategoryHealth        = "Health"
	CategoryEducation     = "Education"
	CategoryTravel        = "Travel"
	CategoryRent          = "Rent"
	CategorySubscriptions = "Subscriptions"
	CategoryIncome        = "Income"
	CategorySalary        = "Salary"
	CategoryOther         = "Other"
)

// FallbackIcon is shown for categories missing from the icon table.
const FallbackIcon = "💳"

// categoryIcons is keyed by lower-cased category name.
var categoryIcons = map[string]string{
	"food":          "🍔",
	"dining":        "🍔",
	"groceries":     "🛒",
	"transport":     "🚗",
	"shopping":      "🛍️",
	"entertainment": "🎬",
	"bills":         "💡",
	"utilities":     "💡",
	"health":        "💊",
	"education":     "📚",
	"travel":        "✈️",
	"rent":          "🏠",
	"subscriptions": "📺",
	"income":        "💰",
	"salary":        "💰",
	"other":         "📦",
}

// IconForCategory maps a category to its emoji, case-insensitively.
func IconForCategory(category string) string {
	if icon, ok := categoryIcons[strings.ToLower(strings.TrimSpace(category))]; ok {
		return icon
	}
	return FallbackIcon
}

// AllCategories returns the categories offered by the manual-entry form
func AllCategories() []string {
	return []string{
		CategoryFood,
		CategoryGroceries,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryHealth,
		CategoryEducation,
		CategoryTravel,
		CategoryRent,
		CategorySubscriptions,
		CategoryIncome,
		CategorySalary,
		CategoryOther,
	}
}

// IsKnownCategory reports whether the category has a dedicated icon.
func IsKnownCategory(category string) bool {
	_, ok := categoryIcons[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

// CategorizationResult contains the result of inferring a category from a transaction name
type CategorizationResult struct {
	Category       string `json:"category"`
	Icon           string `json:"icon"`
	MatchedPattern string `json:"matched_pattern,omitempty"`
}
