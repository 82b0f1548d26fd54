package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tlcs-sim/tlcs/sim"
	"github.com/tlcs-sim/tlcs/sim/trace"
)

var episodeHeader = []string{
	"episode", "steps", "decisions", "sum_neg_reward",
	"cumulative_delay_s", "sum_queue_length", "avg_queue_length", "simulation_time_s",
}

var decisionHeader = []string{"step", "phase", "phase_name", "queue_length", "total_wait_s", "reward"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteEpisodesCSV writes one row per episode. Episodes are numbered from 1.
func WriteEpisodesCSV(w io.Writer, episodes []sim.EpisodeStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(episodeHeader); err != nil {
		return fmt.Errorf("writing episode header: %w", err)
	}
	for _, e := range episodes {
		row := []string{
			strconv.Itoa(e.Episode + 1),
			strconv.Itoa(e.Steps),
			strconv.Itoa(e.Decisions),
			formatFloat(e.SumNegReward),
			strconv.Itoa(e.SumWaitingTime),
			strconv.Itoa(e.SumQueueLength),
			formatFloat(e.AvgQueueLength),
			formatFloat(e.SimulationTime.Seconds()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing episode %d: %w", e.Episode+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDecisionsCSV writes the phase decisions of one episode trace.
func WriteDecisionsCSV(w io.Writer, decisions []trace.PhaseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(decisionHeader); err != nil {
		return fmt.Errorf("writing decision header: %w", err)
	}
	for _, d := range decisions {
		row := []string{
			strconv.Itoa(d.Step),
			strconv.Itoa(d.Phase),
			d.PhaseName,
			strconv.Itoa(d.QueueLength),
			formatFloat(d.TotalWait),
			formatFloat(d.Reward),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing decision at step %d: %w", d.Step, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
