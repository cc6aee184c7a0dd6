package ledger

import "math"

// Round2 rounds to two decimal places. Every arithmetic result is rounded
// before it is persisted or fed into the next calculation so repeated
// operations cannot accumulate floating-point drift.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
