// Package trace provides per-decision recording of the phases a policy chose.
// It stores plain data and does not import sim/.
package trace

// PhaseRecord captures a single phase decision and the state it was taken in.
type PhaseRecord struct {
	Step        int
	Phase       int
	PhaseName   string
	QueueLength int
	TotalWait   float64
	Reward      float64
}
