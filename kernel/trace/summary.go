package trace

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	RecordedTicks  int            `json:"recorded_ticks"`
	Joins          int            `json:"joins"`
	Leaves         int            `json:"leaves"`
	Snapshots      int            `json:"snapshots"`
	FaultsByDomain map[string]int `json:"faults_by_domain"` // domain → count of classified faults
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{
		FaultsByDomain: make(map[string]int),
	}
	if rt == nil {
		return summary
	}

	summary.RecordedTicks = len(rt.Ticks)
	for _, rec := range rt.Ticks {
		for _, m := range rec.Membership {
			switch m.Action {
			case ActionJoin:
				summary.Joins++
			case ActionLeave:
				summary.Leaves++
			}
		}
		for _, f := range rec.Faults {
			summary.FaultsByDomain[f.Domain]++
		}
		if rec.SnapshotDigest != "" {
			summary.Snapshots++
		}
	}
	return summary
}
