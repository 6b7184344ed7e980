package freshness

// AnomalyThreshold is the relative deviation from the recent average
// above which a new price is flagged.
const AnomalyThreshold = 0.5

// AnomalyHistorySize is the number of most recent historical prices
// considered when judging a new observation.
const AnomalyHistorySize = 5

// DetectAnomaly reports whether a new price deviates from the average
// of the recent history by more than the threshold. History is expected
// newest-first; only the first AnomalyHistorySize entries are used.
// With no history, or a zero average, nothing is ever flagged.
func DetectAnomaly(newCents int64, history []int64) bool {
	if len(history) == 0 {
		return false
	}
	if len(history) > AnomalyHistorySize {
		history = history[:AnomalyHistorySize]
	}

	var sum int64
	for _, p := range history {
		sum += p
	}
	avg := float64(sum) / float64(len(history))
	if avg == 0 {
		return false
	}

	diff := float64(newCents) - avg
	if diff < 0 {
		diff = -diff
	}
	return diff/avg > AnomalyThreshold
}
