package accounting

import "fmt"

// Fixed price table. Anything outside the known tiers rates at zero but
// is still sold; the caller is expected to flag it as a data quality
// issue, not to reject the purchase.
var priceTable = map[int]float64{
	15:  5.00,
	30:  10.00,
	60:  20.00,
	120: 40.00,
}

// KnownTier reports whether minutes is a purchasable tier of the price table.
func KnownTier(minutes int) bool {
	_, ok := priceTable[minutes]
	return ok
}

// PriceFor returns the rendered price for a tier, e.g. "P 20.00".
// Unknown tiers price at "P 0.00".
func PriceFor(minutes int) string {
	return FormatAmount(priceTable[minutes])
}

// FormatAmount renders a currency amount the way receipts show it.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("P %.2f", amount)
}
