package formatting

import "github.com/shopspring/decimal"

// FormatPrice цена занятия в вонах, без дробной части если она нулевая
func FormatPrice(price decimal.Decimal) string {
	if price.Equal(price.Truncate(0)) {
		return price.StringFixed(0) + " ₩"
	}
	return price.StringFixed(2) + " ₩"
}
