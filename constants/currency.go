package constants

// CurrencyMarker pairs a symbol or keyword with its ISO 4217 code.
type CurrencyMarker struct {
	Marker string
	Code   string
}

// CurrencyMarkers is checked in fixed priority order; first marker present in
// the text decides the currency.
var CurrencyMarkers = []CurrencyMarker{
	{Marker: "$", Code: "USD"},
	{Marker: "usd", Code: "USD"},
	{Marker: "€", Code: "EUR"},
	{Marker: "eur", Code: "EUR"},
	{Marker: "£", Code: "GBP"},
	{Marker: "gbp", Code: "GBP"},
	{Marker: "¥", Code: "JPY"},
	{Marker: "jpy", Code: "JPY"},
}

// DefaultCurrency is assumed when no marker matches.
const DefaultCurrency = "USD"
