package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// lineItemPattern matches "<qty>x? <name> $<price>"; all non-overlapping
// matches are kept. Unit price is derived as price/quantity, never re-parsed
// from the source, so a malformed scan can yield per-unit artifacts when the
// quantity is picked up wrong — a known heuristic limitation.
var lineItemPattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*x?\s+([a-z][a-z0-9&'\- ]{1,40}?)\s+\$([\d,]+(?:\.\d{1,2})?)`)

// ExtractLineItems scans the text globally for quantity/name/price triples.
func ExtractLineItems(combinedText string) []entity.LineItem {
	text := strings.ToLower(combinedText)
	var items []entity.LineItem
	for _, m := range lineItemPattern.FindAllStringSubmatch(text, -1) {
		qty, ok := parseMoney(m[1])
		if !ok || qty <= 0 {
			continue
		}
		price, ok := parseMoney(m[3])
		if !ok {
			continue
		}
		name := titleCase(strings.TrimSpace(m[2]))
		unit := price / qty
		items = append(items, entity.LineItem{
			Name:       name,
			Quantity:   qty,
			UnitPrice:  &unit,
			TotalPrice: price,
		})
	}
	return items
}
