package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tlcs-sim/tlcs/sim"
	"github.com/tlcs-sim/tlcs/sim/bridge"
	"github.com/tlcs-sim/tlcs/sim/report"
	"github.com/tlcs-sim/tlcs/sim/store"
	"github.com/tlcs-sim/tlcs/sim/trace"
)

// session bundles what one `tlcs run` invocation needs.
type session struct {
	settings     Settings
	settingsPath string // copied into the run directory when non-empty
	engine       sim.Engine
	generator    sim.RouteGenerator
	sink         store.EpisodeSink
	out          io.Writer // receives the final summary
}

// plotSpec names one result series and its axis labels.
type plotSpec struct {
	name, xlabel, ylabel string
	data                 func(*sim.ResultSeries) []float64
}

var sessionPlots = []plotSpec{
	{"reward", "Episode", "Cumulative negative reward", func(r *sim.ResultSeries) []float64 { return r.Reward }},
	{"delay", "Episode", "Cumulative delay (s)", func(r *sim.ResultSeries) []float64 { return r.CumulativeWait }},
	{"queue", "Episode", "Average queue length (vehicles)", func(r *sim.ResultSeries) []float64 { return r.AvgQueueLength }},
}

// executeSession runs the session and closes its episode sink afterwards,
// whether or not the session succeeded.
func executeSession(ctx context.Context, s session) (string, error) {
	runDir, err := runSession(ctx, s)
	if s.sink != nil {
		if cerr := s.sink.Close(context.WithoutCancel(ctx)); cerr != nil {
			logrus.Warnf("Closing episode sink: %v", cerr)
		}
	}
	return runDir, err
}

// runSession runs every episode and saves the session artifacts into a new
// run directory, whose path is returned. Artifacts of the episodes completed
// so far are saved even when an episode fails.
func runSession(ctx context.Context, s session) (runDir string, err error) {
	cfg := s.settings
	policy, err := sim.NewPhasePolicy(cfg.Policy)
	if err != nil {
		return "", err
	}
	engineCmd := bridge.SumoCommand(cfg.GUI, cfg.SumocfgPath(), cfg.MaxSteps)
	simulator, err := sim.NewSimulator(cfg.EpisodeConfig(), engineCmd, s.engine, s.generator, policy)
	if err != nil {
		return "", err
	}
	traceCfg := trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace)}
	if traceCfg.Enabled() {
		simulator.Trace = trace.NewSimulationTrace(traceCfg)
	}
	sink := s.sink
	if sink == nil {
		sink = store.NopSink{}
	}

	runDir, err = report.CreateRunDir(cfg.ModelsPathName)
	if err != nil {
		return "", err
	}
	run := store.RunInfo{Name: filepath.Base(runDir), Policy: cfg.Policy, StartedAt: time.Now()}
	logrus.Infof("Policy %s, %d episodes of %d steps", cfg.Policy, cfg.TotalEpisodes, cfg.MaxSteps)

	var episodes []sim.EpisodeStats
	defer func() {
		if saveErr := saveArtifacts(s, runDir, simulator.Results, episodes); saveErr != nil {
			if err == nil {
				err = saveErr
			} else {
				logrus.Errorf("Saving session artifacts: %v", saveErr)
			}
		}
		logrus.Infof("----- Start time: %s", run.StartedAt.Format(time.DateTime))
		logrus.Infof("----- End time: %s", time.Now().Format(time.DateTime))
		logrus.Infof("----- Session info saved at: %s", runDir)
	}()

	for episode := 0; episode < cfg.TotalEpisodes; episode++ {
		if err := ctx.Err(); err != nil {
			return runDir, fmt.Errorf("session interrupted before episode %d: %w", episode+1, err)
		}
		logrus.Infof("----- Episode %d of %d", episode+1, cfg.TotalEpisodes)

		stats, err := simulator.Run(ctx, episode)
		if err != nil {
			return runDir, fmt.Errorf("episode %d: %w", episode+1, err)
		}
		episodes = append(episodes, stats)
		logrus.Infof("Simulation time: %.1f s", stats.SimulationTime.Seconds())
		if s.out != nil && logrus.IsLevelEnabled(logrus.DebugLevel) {
			stats.Print(s.out)
		}

		if err := sink.Record(ctx, run, stats); err != nil {
			logrus.Warnf("Recording episode %d: %v", episode+1, err)
		}
		if simulator.Trace != nil {
			if err := saveDecisions(runDir, episode, simulator.Trace); err != nil {
				return runDir, err
			}
		}
	}
	return runDir, nil
}

func saveArtifacts(s session, runDir string, results *sim.ResultSeries, episodes []sim.EpisodeStats) error {
	if s.settingsPath != "" {
		if err := report.CopyFile(s.settingsPath, runDir); err != nil {
			return err
		}
	}

	viz := report.NewVisualization(runDir, report.DefaultDPI)
	for _, p := range sessionPlots {
		if err := viz.SaveDataAndPlot(p.data(results), p.name, p.xlabel, p.ylabel); err != nil {
			return err
		}
	}

	if err := writeFile(filepath.Join(runDir, "episodes.csv"), func(w io.Writer) error {
		return report.WriteEpisodesCSV(w, episodes)
	}); err != nil {
		return err
	}

	if s.out != nil && results.Len() > 0 {
		report.PrintSummary(s.out, report.Summary(results))
	}
	return nil
}

func saveDecisions(runDir string, episode int, st *trace.SimulationTrace) error {
	summary := trace.Summarize(st)
	logrus.Debugf("Episode %d: %d decisions, mean reward %.2f, max queue %d",
		episode+1, summary.TotalDecisions, summary.MeanReward, summary.MaxQueueLength)
	path := filepath.Join(runDir, fmt.Sprintf("decisions_episode_%d.csv", episode+1))
	return writeFile(path, func(w io.Writer) error {
		return report.WriteDecisionsCSV(w, st.Decisions)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
