package constants

import (
	"strings"
)

type Category string

const (
	Shopping      Category = "Shopping"
	Dining        Category = "Dining"
	Groceries     Category = "Groceries"
	Transport     Category = "Transport"
	Travel        Category = "Travel"
	Entertainment Category = "Entertainment"
	Utilities     Category = "Utilities"
	Health        Category = "Health"
	Services      Category = "Services"
	Other         Category = "Other"
)

var allCategories = []Category{
	Shopping,
	Dining,
	Groceries,
	Transport,
	Travel,
	Entertainment,
	Utilities,
	Health,
	Services,
	Other,
}

// CategoryKeywords maps each category to the keywords that select it.
// CategoryOrder fixes the scan order: the first category with any keyword
// present in the text wins, so order is the tie-break for texts matching
// more than one category.
var CategoryOrder = []Category{
	Shopping,
	Dining,
	Groceries,
	Transport,
	Travel,
	Entertainment,
	Utilities,
	Health,
	Services,
}

var CategoryKeywords = map[Category][]string{
	Shopping:      {"amazon", "ebay", "etsy", "order shipped", "your order", "walmart", "target", "best buy"},
	Dining:        {"restaurant", "cafe", "coffee", "pizza", "burger", "diner", "doordash", "grubhub", "ubereats", "uber eats"},
	Groceries:     {"grocery", "supermarket", "whole foods", "trader joe", "safeway", "kroger", "costco", "aldi"},
	Transport:     {"uber", "lyft", "taxi", "parking", "gas station", "fuel", "shell", "chevron", "transit"},
	Travel:        {"airline", "flight", "hotel", "airbnb", "booking.com", "expedia", "boarding", "rental car"},
	Entertainment: {"netflix", "spotify", "hulu", "cinema", "theatre", "tickets", "steam", "playstation"},
	Utilities:     {"electric", "water bill", "internet", "broadband", "phone bill", "wireless", "utility"},
	Health:        {"pharmacy", "cvs", "walgreens", "clinic", "dental", "medical", "prescription"},
	Services:      {"subscription", "membership", "invoice", "consulting", "cleaning", "repair"},
}

func AllCategories() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free-form category labels onto the fixed taxonomy.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"food":          Dining,
		"food & drink":  Dining,
		"restaurants":   Dining,
		"grocery":       Groceries,
		"retail":        Shopping,
		"e-commerce":    Shopping,
		"rideshare":     Transport,
		"gas":           Transport,
		"flights":       Travel,
		"lodging":       Travel,
		"hotel":         Travel,
		"streaming":     Entertainment,
		"subscriptions": Services,
		"medical":       Health,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
