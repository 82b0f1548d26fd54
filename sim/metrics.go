// Tracks per-episode aggregates and the series used for plotting.

package sim

import (
	"fmt"
	"io"
	"time"
)

// EpisodeStats aggregates one simulation run.
type EpisodeStats struct {
	Episode        int           // zero-based episode index (also the route seed)
	Steps          int           // simulation steps executed
	Decisions      int           // phase decisions taken
	SumNegReward   float64       // sum of the negative per-decision rewards
	SumWaitingTime int           // waiting seconds, one per halted vehicle per step
	SumQueueLength int           // halted vehicles summed over every step
	AvgQueueLength float64       // SumQueueLength / step budget
	SimulationTime time.Duration // wall-clock duration of the run
}

// Print writes a human-readable block with the episode aggregates.
func (s EpisodeStats) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Episode %d ===\n", s.Episode+1)
	fmt.Fprintf(w, "Steps                : %d\n", s.Steps)
	fmt.Fprintf(w, "Phase decisions      : %d\n", s.Decisions)
	fmt.Fprintf(w, "Total reward         : %.1f\n", s.SumNegReward)
	fmt.Fprintf(w, "Cumulative delay     : %d s\n", s.SumWaitingTime)
	fmt.Fprintf(w, "Average queue length : %.2f vehicles\n", s.AvgQueueLength)
	fmt.Fprintf(w, "Simulation time      : %.1f s\n", s.SimulationTime.Seconds())
}

// ResultSeries holds one entry per completed episode, in completion order.
type ResultSeries struct {
	Reward         []float64 // cumulative negative reward
	CumulativeWait []float64 // cumulative delay in seconds
	AvgQueueLength []float64 // average queued vehicles per step
}

// NewResultSeries returns empty series.
func NewResultSeries() *ResultSeries {
	return &ResultSeries{
		Reward:         make([]float64, 0),
		CumulativeWait: make([]float64, 0),
		AvgQueueLength: make([]float64, 0),
	}
}

// Append adds the aggregates of a completed episode to all three series.
func (r *ResultSeries) Append(s EpisodeStats) {
	r.Reward = append(r.Reward, s.SumNegReward)
	r.CumulativeWait = append(r.CumulativeWait, float64(s.SumWaitingTime))
	r.AvgQueueLength = append(r.AvgQueueLength, s.AvgQueueLength)
}

// Len returns the number of recorded episodes.
func (r *ResultSeries) Len() int {
	return len(r.Reward)
}
