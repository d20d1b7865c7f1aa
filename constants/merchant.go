package constants

// KnownMerchant is one row of the fixed merchant lookup table. Key is matched
// as a lowercase substring of the combined text; Display is the canonical
// name; Category, when set, overrides the keyword-table category.
type KnownMerchant struct {
	Key      string
	Display  string
	Category Category
}

// KnownMerchants is scanned in order; the first key found in the text wins.
// This table always takes precedence over regex-derived merchant names.
var KnownMerchants = []KnownMerchant{
	{Key: "amazon", Display: "Amazon", Category: Shopping},
	{Key: "walmart", Display: "Walmart", Category: Shopping},
	{Key: "target", Display: "Target", Category: Shopping},
	{Key: "best buy", Display: "Best Buy", Category: Shopping},
	{Key: "ebay", Display: "eBay", Category: Shopping},
	{Key: "etsy", Display: "Etsy", Category: Shopping},
	{Key: "costco", Display: "Costco", Category: Groceries},
	{Key: "whole foods", Display: "Whole Foods", Category: Groceries},
	{Key: "trader joe", Display: "Trader Joe's", Category: Groceries},
	{Key: "safeway", Display: "Safeway", Category: Groceries},
	{Key: "kroger", Display: "Kroger", Category: Groceries},
	{Key: "starbucks", Display: "Starbucks", Category: Dining},
	{Key: "mcdonald", Display: "McDonald's", Category: Dining},
	{Key: "chipotle", Display: "Chipotle", Category: Dining},
	{Key: "doordash", Display: "DoorDash", Category: Dining},
	{Key: "grubhub", Display: "Grubhub", Category: Dining},
	{Key: "uber eats", Display: "Uber Eats", Category: Dining},
	{Key: "uber", Display: "Uber", Category: Transport},
	{Key: "lyft", Display: "Lyft", Category: Transport},
	{Key: "shell", Display: "Shell", Category: Transport},
	{Key: "chevron", Display: "Chevron", Category: Transport},
	{Key: "delta", Display: "Delta Air Lines", Category: Travel},
	{Key: "united airlines", Display: "United Airlines", Category: Travel},
	{Key: "airbnb", Display: "Airbnb", Category: Travel},
	{Key: "marriott", Display: "Marriott", Category: Travel},
	{Key: "netflix", Display: "Netflix", Category: Entertainment},
	{Key: "spotify", Display: "Spotify", Category: Entertainment},
	{Key: "hulu", Display: "Hulu", Category: Entertainment},
	{Key: "apple", Display: "Apple", Category: Shopping},
	{Key: "google", Display: "Google", Category: Services},
	{Key: "cvs", Display: "CVS Pharmacy", Category: Health},
	{Key: "walgreens", Display: "Walgreens", Category: Health},
	{Key: "home depot", Display: "The Home Depot", Category: Shopping},
	{Key: "ikea", Display: "IKEA", Category: Shopping},
}

// UnknownMerchant is the sentinel used when no strategy resolves a merchant.
const UnknownMerchant = "Unknown Merchant"
