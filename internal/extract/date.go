package extract

import (
	"regexp"
	"strings"
	"time"
)

// datePattern pairs one regex with the layouts its matches are tried
// against. Patterns run in order; within a pattern, layouts run in order;
// the first combination that parses wins.
type datePattern struct {
	re      *regexp.Regexp
	layouts []string
}

var datePatterns = []datePattern{
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		layouts: []string{"01/02/2006", "1/2/2006", "01/02/06", "1/2/06"},
	},
	{
		re:      regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		layouts: []string{"2006-01-02"},
	},
	{
		re:      regexp.MustCompile(`\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
		layouts: []string{"January 2, 2006", "January 2 2006"},
	},
}

// ExtractDate finds the transaction date. On total failure it returns the
// current time with defaulted=true — callers must treat that as "unknown,
// defaulted", not as a real timestamp.
func ExtractDate(combinedText string, now func() time.Time) (t time.Time, defaulted bool) {
	text := strings.ToLower(combinedText)
	for _, p := range datePatterns {
		for _, match := range p.re.FindAllString(text, -1) {
			candidate := capitalizeMonth(match)
			for _, layout := range p.layouts {
				if parsed, err := time.Parse(layout, candidate); err == nil {
					return parsed, false
				}
			}
		}
	}
	if now == nil {
		now = time.Now
	}
	return now(), true
}

// capitalizeMonth restores the month capitalization time.Parse requires
// after the combined text was lowercased.
func capitalizeMonth(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
