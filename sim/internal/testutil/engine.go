// Package testutil provides shared test infrastructure for the episode runner.
// It holds a scripted in-memory engine and assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"context"
	"errors"
	"sort"
)

// ErrEngineStopped is returned by Step when no simulation is running.
var ErrEngineStopped = errors.New("fake engine: not running")

// FakeVehicle is a vehicle known to a FakeEngine.
type FakeVehicle struct {
	Road string
	Wait float64
}

// FakeEngine is a scripted stand-in for the external traffic simulator.
// Halting counts and vehicles stay as configured unless OnStep changes them.
type FakeEngine struct {
	Halting  map[string]int
	Vehicles map[string]FakeVehicle
	// OnStep runs after every successful step with the new step count.
	OnStep func(e *FakeEngine, step int)
	// FailAtStep makes the n-th Step call fail (1-based); 0 disables.
	FailAtStep int
	// StartErr is returned by Start when set.
	StartErr error
	// CloseCtxErr is the state of the context passed to the last Close.
	CloseCtxErr error

	Running  bool
	Steps    int
	Starts   int
	Closes   int
	StartCmd []string
	Phases   []int
	TLIDs    []string
}

// NewFakeEngine returns an engine with no halted vehicles and an empty network.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Halting:  make(map[string]int),
		Vehicles: make(map[string]FakeVehicle),
	}
}

func (e *FakeEngine) Start(_ context.Context, cmd []string) error {
	if e.StartErr != nil {
		return e.StartErr
	}
	e.Starts++
	e.Running = true
	e.Steps = 0
	e.StartCmd = cmd
	return nil
}

func (e *FakeEngine) Close(ctx context.Context) error {
	e.Closes++
	e.CloseCtxErr = ctx.Err()
	e.Running = false
	return nil
}

func (e *FakeEngine) Step(ctx context.Context) error {
	if !e.Running {
		return ErrEngineStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.FailAtStep > 0 && e.Steps+1 == e.FailAtStep {
		return errors.New("fake engine: step failed")
	}
	e.Steps++
	if e.OnStep != nil {
		e.OnStep(e, e.Steps)
	}
	return nil
}

func (e *FakeEngine) EdgeHaltingNumber(_ context.Context, edgeID string) (int, error) {
	return e.Halting[edgeID], nil
}

func (e *FakeEngine) VehicleIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(e.Vehicles))
	for id := range e.Vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (e *FakeEngine) VehicleWaitingTime(_ context.Context, vehicleID string) (float64, error) {
	v, ok := e.Vehicles[vehicleID]
	if !ok {
		return 0, errors.New("fake engine: unknown vehicle " + vehicleID)
	}
	return v.Wait, nil
}

func (e *FakeEngine) VehicleRoad(_ context.Context, vehicleID string) (string, error) {
	v, ok := e.Vehicles[vehicleID]
	if !ok {
		return "", errors.New("fake engine: unknown vehicle " + vehicleID)
	}
	return v.Road, nil
}

func (e *FakeEngine) SetPhase(_ context.Context, tlID string, phase int) error {
	e.TLIDs = append(e.TLIDs, tlID)
	e.Phases = append(e.Phases, phase)
	return nil
}

// FakeGenerator records the seeds it was asked for and writes nothing.
type FakeGenerator struct {
	Seeds []int64
	Err   error
}

func (g *FakeGenerator) GenerateRouteFile(seed int64) (string, error) {
	if g.Err != nil {
		return "", g.Err
	}
	g.Seeds = append(g.Seeds, seed)
	return "episode_routes.rou.xml", nil
}
