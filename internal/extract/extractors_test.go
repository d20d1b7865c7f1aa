package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

func TestExtractMerchant_KnownTableBeatsPatterns(t *testing.T) {
	// "from starbucks" would also match the phrase pattern; the table wins.
	name, source, cat := ExtractMerchant("your receipt from starbucks coffee", "")
	assert.Equal(t, "Starbucks", name)
	assert.Equal(t, MerchantFromTable, source)
	assert.Equal(t, constants.Dining, cat)
}

func TestExtractMerchant_PatternFallback(t *testing.T) {
	name, source, cat := ExtractMerchant("receipt from corner bakery", "")
	assert.Equal(t, "Corner Bakery", name)
	assert.Equal(t, MerchantFromPattern, source)
	assert.Empty(t, cat)
}

func TestExtractMerchant_DomainFallback(t *testing.T) {
	name, source, _ := ExtractMerchant("thanks for shopping with us", "orders@mail.somestore.com")
	assert.Equal(t, "Somestore", name)
	assert.Equal(t, MerchantFromDomain, source)
}

func TestExtractMerchant_Unresolved(t *testing.T) {
	name, source, _ := ExtractMerchant("hello world", "")
	assert.Equal(t, constants.UnknownMerchant, name)
	assert.Equal(t, MerchantUnresolved, source)
}

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		name string
		text string
		want float64
	}{
		{"labeled total", "subtotal $10.00 total: $12.34", 12.34},
		{"thousands separators", "total: $1,234.56", 1234.56},
		{"bare dollar", "you paid $9.99 today", 9.99},
		{"usd suffix", "charged 15.00 usd to your card", 15.00},
		{"not found", "no numbers here", 0.0},
		{"labeled beats earlier bare", "fee $2.00 ... total: 50.00", 50.00},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ExtractAmount(tc.text), 0.001)
		})
	}
}

func TestExtractCurrency(t *testing.T) {
	assert.Equal(t, "EUR", ExtractCurrency("total €12.00"))
	assert.Equal(t, "GBP", ExtractCurrency("total £3.50"))
	assert.Equal(t, "USD", ExtractCurrency("total 12.00"))
}

func TestExtractDate(t *testing.T) {
	cases := []struct {
		name string
		text string
		want time.Time
	}{
		{"slash", "date: 03/14/2026", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"slash short year", "on 3/4/26", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"iso", "issued 2026-03-14", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"month name", "March 14, 2026 thank you", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, defaulted := ExtractDate(tc.text, fixedNow)
			require.False(t, defaulted)
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}
}

func TestExtractDate_DefaultsToNow(t *testing.T) {
	got, defaulted := ExtractDate("no date anywhere", fixedNow)
	assert.True(t, defaulted)
	assert.True(t, fixedNow().Equal(got))
}

func TestExtractCategory_FirstMatchWins(t *testing.T) {
	// Text mentioning both a dining and a travel keyword resolves by table
	// order, not by position in the text.
	first := ExtractCategory("flight and restaurant charges", "")
	again := ExtractCategory("restaurant and flight charges", "")
	assert.Equal(t, first, again)
	assert.NotEqual(t, constants.Other, first)
}

func TestExtractCategory_DefaultOther(t *testing.T) {
	assert.Equal(t, constants.Other, ExtractCategory("qwerty asdf", ""))
}

func TestExtractLineItems(t *testing.T) {
	items := ExtractLineItems("2x coffee beans $15.00\n1 mug $8.50")
	require.Len(t, items, 2)

	assert.Equal(t, "Coffee Beans", items[0].Name)
	assert.Equal(t, 2.0, items[0].Quantity)
	assert.InDelta(t, 15.00, items[0].TotalPrice, 0.001)
	require.NotNil(t, items[0].UnitPrice)
	assert.InDelta(t, 7.50, *items[0].UnitPrice, 0.001)

	assert.Equal(t, "Mug", items[1].Name)
	assert.Equal(t, 1.0, items[1].Quantity)
	assert.InDelta(t, 8.50, items[1].TotalPrice, 0.001)
}

func TestExtractLineItems_NoneFound(t *testing.T) {
	assert.Empty(t, ExtractLineItems("thank you for your purchase"))
}

func TestExtractPaymentMethod(t *testing.T) {
	assert.Equal(t, "Visa", ExtractPaymentMethod("paid with visa ending 4242"))
	assert.Equal(t, constants.UnknownPaymentMethod, ExtractPaymentMethod("paid somehow"))
}

func TestExtractTransactionID(t *testing.T) {
	assert.Equal(t, "ABC-123", ExtractTransactionID("Order #abc-123 confirmed"))
	assert.Equal(t, "999888", ExtractTransactionID("transaction id: 999888"))
	assert.Empty(t, ExtractTransactionID("no identifiers"))
}
