package srs

// RetentionRate returns the percentage of reviews graded as remembered
// (quality >= 3), in [0,100]. An empty history yields 0 rather than NaN.
func RetentionRate(qualities []Quality) float64 {
	if len(qualities) == 0 {
		return 0
	}

	remembered := 0
	for _, q := range qualities {
		if q.Remembered() {
			remembered++
		}
	}
	return float64(remembered) / float64(len(qualities)) * 100
}
