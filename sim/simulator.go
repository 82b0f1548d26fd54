// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tlcs-sim/tlcs/sim/trace"
)

// Simulator runs evaluation episodes: it regenerates the traffic, drives the
// external engine through the step budget and keeps the episode bookkeeping.
type Simulator struct {
	EpisodeConfig
	// EngineCommand is the command line handed to the engine on every Start.
	EngineCommand []string
	// Results has one entry per completed episode.
	Results *ResultSeries
	// Trace records every phase decision when non-nil.
	Trace *trace.SimulationTrace

	engine    Engine
	generator RouteGenerator
	policy    PhasePolicy

	// Step is the number of steps executed in the current episode.
	Step         int
	waitingTimes WaitingTable
	decisions    int

	sumNegReward   float64
	sumQueueLength int
	sumWaitingTime int
}

// NewSimulator creates a Simulator. Returns an error if cfg is invalid or a
// collaborator is missing.
func NewSimulator(cfg EpisodeConfig, engineCmd []string, engine Engine, generator RouteGenerator, policy PhasePolicy) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid episode config: %w", err)
	}
	if engine == nil {
		return nil, fmt.Errorf("engine must not be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("route generator must not be nil")
	}
	if policy == nil {
		policy = &RoundRobinPolicy{}
	}
	return &Simulator{
		EpisodeConfig: cfg,
		EngineCommand: engineCmd,
		Results:       NewResultSeries(),
		engine:        engine,
		generator:     generator,
		policy:        policy,
		waitingTimes:  NewWaitingTable(),
	}, nil
}

// Run executes one episode seeded by its index and appends its aggregates to
// Results. The engine is started at the beginning and closed on every exit
// path. Engine failures abort the episode; nothing is appended then.
func (sim *Simulator) Run(ctx context.Context, episode int) (stats EpisodeStats, err error) {
	startTime := time.Now()

	routeFile, err := sim.generator.GenerateRouteFile(int64(episode))
	if err != nil {
		return stats, fmt.Errorf("generating routes for episode %d: %w", episode, err)
	}
	logrus.Debugf("Route file for episode %d written to %s", episode, routeFile)

	if err := sim.engine.Start(ctx, sim.EngineCommand); err != nil {
		return stats, fmt.Errorf("starting engine: %w", err)
	}
	defer func() {
		// release the engine even when ctx was cancelled mid-episode
		if cerr := sim.engine.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = fmt.Errorf("closing engine: %w", cerr)
		}
		stats.SimulationTime = time.Since(startTime).Round(100 * time.Millisecond)
	}()
	logrus.Info("Simulating...")

	sim.reset()

	for sim.Step < sim.MaxSteps {
		obs, err := sim.observe(ctx)
		if err != nil {
			return stats, err
		}
		reward := obs.Reward()

		phase := sim.policy.Next(obs)
		if err := sim.engine.SetPhase(ctx, TrafficLightID, int(phase)); err != nil {
			return stats, fmt.Errorf("setting phase %s at step %d: %w", phase, sim.Step, err)
		}
		sim.decisions++
		logrus.Debugf("[step %05d] phase=%s queue=%d wait=%.1f reward=%.1f",
			sim.Step, phase, obs.QueueLength, obs.TotalWait, reward)
		if sim.Trace != nil {
			sim.Trace.RecordDecision(trace.PhaseRecord{
				Step:        sim.Step,
				Phase:       int(phase),
				PhaseName:   phase.String(),
				QueueLength: obs.QueueLength,
				TotalWait:   obs.TotalWait,
				Reward:      reward,
			})
		}

		if err := sim.simulate(ctx, sim.DurationFor(phase)); err != nil {
			return stats, err
		}

		// only negative rewards are accumulated
		if reward < 0 {
			sim.sumNegReward += reward
		}
	}

	stats = sim.episodeStats(episode)
	sim.Results.Append(stats)
	logrus.Infof("Total reward: %.1f", stats.SumNegReward)
	return stats, nil
}

func (sim *Simulator) reset() {
	sim.Step = 0
	sim.waitingTimes = NewWaitingTable()
	sim.decisions = 0
	sim.sumNegReward = 0
	sim.sumQueueLength = 0
	sim.sumWaitingTime = 0
	sim.policy.Reset()
	if sim.Trace != nil {
		sim.Trace.Reset()
	}
}

// observe samples queue length first, then waiting times, as the reward
// definition expects.
func (sim *Simulator) observe(ctx context.Context) (Observation, error) {
	queue, perEdge, err := sim.queueLength(ctx)
	if err != nil {
		return Observation{}, err
	}
	wait, err := sim.collectWaitingTimes(ctx)
	if err != nil {
		return Observation{}, err
	}
	return Observation{
		Step:           sim.Step,
		QueueLength:    queue,
		TotalWait:      wait,
		ApproachQueues: perEdge,
	}, nil
}

// simulate advances the engine by up to steps steps, never past MaxSteps,
// sampling the queue length after each one.
func (sim *Simulator) simulate(ctx context.Context, steps int) error {
	if sim.Step+steps >= sim.MaxSteps {
		steps = sim.MaxSteps - sim.Step
	}

	for steps > 0 {
		if err := sim.engine.Step(ctx); err != nil {
			return fmt.Errorf("advancing step %d: %w", sim.Step, err)
		}
		sim.Step++
		steps--
		queue, _, err := sim.queueLength(ctx)
		if err != nil {
			return err
		}
		sim.sumQueueLength += queue
		// one step halted in a queue is one second waited, per vehicle
		sim.sumWaitingTime += queue
	}
	return nil
}

// queueLength returns the halted vehicles over all incoming edges and per edge.
func (sim *Simulator) queueLength(ctx context.Context) (int, map[string]int, error) {
	total := 0
	perEdge := make(map[string]int, len(IncomingEdges))
	for _, edge := range IncomingEdges {
		n, err := sim.engine.EdgeHaltingNumber(ctx, edge)
		if err != nil {
			return 0, nil, fmt.Errorf("halting number of %s: %w", edge, err)
		}
		perEdge[edge] = n
		total += n
	}
	return total, perEdge, nil
}

// collectWaitingTimes refreshes the waiting table from the engine and returns
// the total waiting time of vehicles on incoming edges.
func (sim *Simulator) collectWaitingTimes(ctx context.Context) (float64, error) {
	ids, err := sim.engine.VehicleIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing vehicles: %w", err)
	}
	for _, id := range ids {
		wait, err := sim.engine.VehicleWaitingTime(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("waiting time of %s: %w", id, err)
		}
		road, err := sim.engine.VehicleRoad(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("road of %s: %w", id, err)
		}
		sim.waitingTimes.Observe(id, road, wait)
	}
	sim.waitingTimes.Retain(ids)
	return sim.waitingTimes.Total(), nil
}

// WaitingTimes returns the waiting table as of the most recent sample.
func (sim *Simulator) WaitingTimes() WaitingTable {
	return sim.waitingTimes
}

func (sim *Simulator) episodeStats(episode int) EpisodeStats {
	return EpisodeStats{
		Episode:        episode,
		Steps:          sim.Step,
		Decisions:      sim.decisions,
		SumNegReward:   sim.sumNegReward,
		SumWaitingTime: sim.sumWaitingTime,
		SumQueueLength: sim.sumQueueLength,
		AvgQueueLength: float64(sim.sumQueueLength) / float64(sim.MaxSteps),
	}
}
