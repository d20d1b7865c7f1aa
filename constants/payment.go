package constants

// PaymentKeyword maps an issuer/wallet keyword to its display name.
type PaymentKeyword struct {
	Key     string
	Display string
}

// PaymentMethods is scanned in order; first keyword present in the text wins.
// More specific wallet names come before the generic card/cash fallbacks.
var PaymentMethods = []PaymentKeyword{
	{Key: "apple pay", Display: "Apple Pay"},
	{Key: "google pay", Display: "Google Pay"},
	{Key: "paypal", Display: "PayPal"},
	{Key: "venmo", Display: "Venmo"},
	{Key: "amex", Display: "American Express"},
	{Key: "american express", Display: "American Express"},
	{Key: "mastercard", Display: "Mastercard"},
	{Key: "visa", Display: "Visa"},
	{Key: "discover", Display: "Discover"},
	{Key: "debit card", Display: "Debit Card"},
	{Key: "debit", Display: "Debit Card"},
	{Key: "credit card", Display: "Credit Card"},
	{Key: "gift card", Display: "Gift Card"},
	{Key: "cash", Display: "Cash"},
}

// UnknownPaymentMethod is the default when no keyword matches.
const UnknownPaymentMethod = "Unknown"
