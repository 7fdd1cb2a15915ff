package health

import "time"

// Period is a contiguous span where a provider's status didn't change.
type Period struct {
	Status  Status        `json:"status"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Samples int           `json:"samples"`
}

// Segment groups a run of consecutive samples into periods, one per status
// change - the "uptime/downtime segmentation" view over raw history.
func Segment(history []CheckResult) []Period {
	if len(history) == 0 {
		return nil
	}

	var periods []Period
	current := Period{Status: history[0].Status, Start: history[0].Timestamp, End: history[0].Timestamp, Samples: 1}

	for _, sample := range history[1:] {
		if sample.Status == current.Status {
			current.End = sample.Timestamp
			current.Samples++
			continue
		}
		periods = append(periods, current)
		current = Period{Status: sample.Status, Start: sample.Timestamp, End: sample.Timestamp, Samples: 1}
	}
	periods = append(periods, current)
	return periods
}

// Availability returns the fraction of samples in history that were
// healthy, in [0, 1]. An empty history returns 1 (nothing observed yet).
func Availability(history []CheckResult) float64 {
	if len(history) == 0 {
		return 1
	}

	healthy := 0
	for _, sample := range history {
		if sample.Status == StatusHealthy {
			healthy++
		}
	}
	return float64(healthy) / float64(len(history))
}
