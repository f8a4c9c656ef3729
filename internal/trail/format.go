package trail

import "fmt"

func FormatMoney(amount uint32) string {
	return fmt.Sprintf("$%d", amount)
}

// Percentage returns value/max clamped to [0, 1]; non-positive max yields 0.
func Percentage(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	return min(max(value/maxValue, 0), 1)
}
