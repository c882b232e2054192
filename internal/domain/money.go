package domain

import "math"

// MoneyEpsilon is the tolerance for money comparisons. Split prices are not
// rounded internally, so sums of shares reconcile against totals only within
// floating-point tolerance.
const MoneyEpsilon = 0.01

func MoneyEqual(a, b float64) bool { return math.Abs(a-b) < MoneyEpsilon }

// Round2 rounds to 2 decimal places for presentation. Internal computation
// keeps full precision.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
