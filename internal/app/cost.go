package app

// Cost is the price of an access grant for a quiz of the given size.
// Base price covers up to 100 questions; each further started hundred
// adds a flat surcharge.
func Cost(questionCount int) int64 {
	const (
		base      = 10000
		surcharge = 5000
	)
	switch {
	case questionCount <= 100:
		return base
	case questionCount <= 199:
		return base + surcharge
	case questionCount <= 299:
		return base + 2*surcharge
	}
	extra := int64((questionCount - 300 + 99) / 100)
	return base + 2*surcharge + surcharge*extra
}
