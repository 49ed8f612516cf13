package moments

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64
	Upper float64
	Level float64
}

// Width returns Upper - Lower.
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

// HalfWidth returns half of Width.
func (i Interval) HalfWidth() float64 {
	return (i.Upper - i.Lower) / 2
}

// Contains reports whether x lies in the closed interval.
func (i Interval) Contains(x float64) bool {
	return x >= i.Lower && x <= i.Upper
}
