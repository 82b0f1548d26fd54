package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDecisions != 0 {
		t.Errorf("expected 0 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.UniquePhases != 0 {
		t.Errorf("expected 0 unique phases, got %d", summary.UniquePhases)
	}
	if summary.MeanReward != 0 || summary.MinReward != 0 {
		t.Error("expected 0 reward values")
	}
	if len(summary.PhaseDistribution) != 0 {
		t.Error("expected empty phase distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalDecisions != 0 || summary.PhaseDistribution == nil {
		t.Errorf("expected zero summary with non-nil distribution, got %+v", summary)
	}
}

func TestSummarize_RewardStatistics_CorrectMeanAndMin(t *testing.T) {
	// GIVEN decisions with known rewards
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordDecision(PhaseRecord{PhaseName: "NS_GREEN", Reward: -10, QueueLength: 2})
	st.RecordDecision(PhaseRecord{PhaseName: "NS_YELLOW", Reward: -40, QueueLength: 7})
	st.RecordDecision(PhaseRecord{PhaseName: "NS_GREEN", Reward: -25, QueueLength: 5})

	// WHEN summarized
	summary := Summarize(st)

	// THEN mean reward = (-10 - 40 - 25) / 3 = -25
	if summary.MeanReward != -25 {
		t.Errorf("expected mean reward -25, got %.4f", summary.MeanReward)
	}
	// THEN min reward = -40 and max queue = 7
	if summary.MinReward != -40 {
		t.Errorf("expected min reward -40, got %.4f", summary.MinReward)
	}
	if summary.MaxQueueLength != 7 {
		t.Errorf("expected max queue 7, got %d", summary.MaxQueueLength)
	}
}

func TestSummarize_PhaseDistribution_CountsPerPhase(t *testing.T) {
	// GIVEN the same phase chosen multiple times
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordDecision(PhaseRecord{PhaseName: "EW_GREEN"})
	st.RecordDecision(PhaseRecord{PhaseName: "EW_GREEN"})
	st.RecordDecision(PhaseRecord{PhaseName: "EW_YELLOW"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN phase distribution reflects counts
	if summary.PhaseDistribution["EW_GREEN"] != 2 {
		t.Errorf("expected EW_GREEN count 2, got %d", summary.PhaseDistribution["EW_GREEN"])
	}
	if summary.PhaseDistribution["EW_YELLOW"] != 1 {
		t.Errorf("expected EW_YELLOW count 1, got %d", summary.PhaseDistribution["EW_YELLOW"])
	}
	if summary.UniquePhases != 2 {
		t.Errorf("expected 2 unique phases, got %d", summary.UniquePhases)
	}
}
