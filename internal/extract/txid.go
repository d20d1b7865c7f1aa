package extract

import (
	"regexp"
	"strings"
)

// Transaction identifier patterns in priority order: explicit ids first,
// then confirmation codes.
var txidPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:transaction|order|receipt)\s*(?:id|number|no\.?|#)\s*[:#]?\s*([a-z0-9][a-z0-9\-]{2,})`),
	regexp.MustCompile(`confirmation\s*(?:code|number)\s*[:#]?\s*([a-z0-9][a-z0-9\-]{2,})`),
}

// ExtractTransactionID returns the first capture group matched, uppercased,
// or the empty string.
func ExtractTransactionID(combinedText string) string {
	text := strings.ToLower(combinedText)
	for _, re := range txidPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}
