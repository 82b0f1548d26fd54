package report

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tlcs-sim/tlcs/sim"
)

// SeriesSummary describes one result series across episodes.
type SeriesSummary struct {
	Name   string
	Count  int
	Mean   float64
	StdDev float64 // sample standard deviation; 0 with fewer than two values
	Min    float64
	Max    float64
}

// Summarize computes the summary of a single series.
func Summarize(name string, data []float64) SeriesSummary {
	s := SeriesSummary{Name: name, Count: len(data)}
	if len(data) == 0 {
		return s
	}
	s.Mean = stat.Mean(data, nil)
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}
	s.Min = floats.Min(data)
	s.Max = floats.Max(data)
	return s
}

// Summary summarizes the three result series in plot order.
func Summary(r *sim.ResultSeries) []SeriesSummary {
	return []SeriesSummary{
		Summarize("reward", r.Reward),
		Summarize("delay", r.CumulativeWait),
		Summarize("queue", r.AvgQueueLength),
	}
}

// PrintSummary writes one line per series.
func PrintSummary(w io.Writer, summaries []SeriesSummary) {
	fmt.Fprintln(w, "=== Session Summary ===")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-7s n=%d mean=%.2f std=%.2f min=%.2f max=%.2f\n",
			s.Name, s.Count, s.Mean, s.StdDev, s.Min, s.Max)
	}
}
