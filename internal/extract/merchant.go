package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
)

// Merchant phrase patterns, attempted in order after the known-merchant
// table; the first pattern with a match wins. Ordering is part of the
// observable contract.
var merchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bfrom\s+([a-z0-9&'.\-]+(?:\s+[a-z0-9&'.\-]+){0,3})`),
	regexp.MustCompile(`\breceipt\s+from\s+([a-z0-9&'.\-]+(?:\s+[a-z0-9&'.\-]+){0,3})`),
	regexp.MustCompile(`\b(?:store|shop|merchant)\s*:\s*([a-z0-9&'.\-]+(?:\s+[a-z0-9&'.\-]+){0,3})`),
}

// ExtractMerchant resolves the merchant with fixed precedence: known-merchant
// table (substring match, first row wins), then phrase patterns, then the
// sender's domain label, then the UnknownMerchant sentinel. The returned
// category is non-empty only for table hits that carry one.
func ExtractMerchant(combinedText, originatingAddress string) (name string, source MerchantSource, category constants.Category) {
	text := strings.ToLower(combinedText)
	sender := strings.ToLower(originatingAddress)
	haystack := text + " " + sender

	for _, m := range constants.KnownMerchants {
		if strings.Contains(haystack, m.Key) {
			return m.Display, MerchantFromTable, m.Category
		}
	}

	for _, re := range merchantPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return titleCase(strings.TrimSpace(m[1])), MerchantFromPattern, ""
		}
	}

	if label := domainLabel(sender); label != "" {
		return titleCase(label), MerchantFromDomain, ""
	}

	return constants.UnknownMerchant, MerchantUnresolved, ""
}

// domainLabel pulls the registrable label out of an address: the label just
// before the TLD, so both orders@amazon.com and noreply@mail.amazon.com
// yield "amazon".
func domainLabel(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	domain := strings.TrimSpace(addr[at+1:])
	if i := strings.IndexAny(domain, " >"); i >= 0 {
		domain = domain[:i]
	}
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
