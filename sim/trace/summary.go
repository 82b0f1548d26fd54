package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions    int
	MeanReward        float64
	MinReward         float64
	MaxQueueLength    int
	UniquePhases      int
	PhaseDistribution map[string]int // decisions per phase name
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PhaseDistribution: make(map[string]int),
	}
	if st == nil || len(st.Decisions) == 0 {
		return summary
	}

	summary.TotalDecisions = len(st.Decisions)
	totalReward := 0.0
	for i, d := range st.Decisions {
		summary.PhaseDistribution[d.PhaseName]++
		totalReward += d.Reward
		if i == 0 || d.Reward < summary.MinReward {
			summary.MinReward = d.Reward
		}
		if d.QueueLength > summary.MaxQueueLength {
			summary.MaxQueueLength = d.QueueLength
		}
	}
	summary.MeanReward = totalReward / float64(len(st.Decisions))
	summary.UniquePhases = len(summary.PhaseDistribution)

	return summary
}
