package workload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tlcs-sim/tlcs/sim"
)

// StraightProbability is the share of vehicles driving straight through.
const StraightProbability = 0.75

// StraightRoutes are the through movements of the intersection.
var StraightRoutes = []string{"W_E", "E_W", "N_S", "S_N"}

// TurnRoutes are the left and right turning movements.
var TurnRoutes = []string{"W_N", "W_S", "N_W", "N_E", "E_N", "E_S", "S_W", "S_E"}

// Departure is one vehicle entering the network.
type Departure struct {
	ID    string
	Route string
	Step  int
}

// Schedule lists departures in non-decreasing step order.
type Schedule []Departure

// GenerateSchedule creates the departures of one episode.
// Deterministic given the same spec, seed, nCars and maxSteps.
func GenerateSchedule(spec ArrivalSpec, seed int64, nCars, maxSteps int) (Schedule, error) {
	if maxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be > 0, got %d", maxSteps)
	}
	if nCars < 0 {
		return nil, fmt.Errorf("number of cars must be >= 0, got %d", nCars)
	}
	sampler, err := NewArrivalSampler(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid arrival spec: %w", err)
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
	steps := SampleDepartureSteps(rng.ForSubsystem(sim.SubsystemArrivals), sampler, nCars, maxSteps)
	routeRNG := rng.ForSubsystem(sim.SubsystemRoutes)

	schedule := make(Schedule, 0, nCars)
	for i, step := range steps {
		var route string
		if routeRNG.Float64() < StraightProbability {
			route = StraightRoutes[routeRNG.Intn(len(StraightRoutes))]
		} else {
			route = TurnRoutes[routeRNG.Intn(len(TurnRoutes))]
		}
		schedule = append(schedule, Departure{
			ID:    fmt.Sprintf("%s_%d", route, i),
			Route: route,
			Step:  step,
		})
	}
	return schedule, nil
}

// Generator writes a fresh route file for every episode.
type Generator struct {
	MaxSteps  int
	NCars     int
	Arrival   ArrivalSpec
	RouteFile string // destination path, overwritten every episode
}

// NewGenerator creates a Generator writing to routeFile.
func NewGenerator(maxSteps, nCars int, arrival ArrivalSpec, routeFile string) *Generator {
	return &Generator{
		MaxSteps:  maxSteps,
		NCars:     nCars,
		Arrival:   arrival,
		RouteFile: routeFile,
	}
}

// GenerateRouteFile generates the schedule for seed and writes it as a SUMO
// route file. Returns the path written.
func (g *Generator) GenerateRouteFile(seed int64) (string, error) {
	schedule, err := GenerateSchedule(g.Arrival, seed, g.NCars, g.MaxSteps)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(g.RouteFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating route directory: %w", err)
		}
	}
	if err := WriteRouteFile(g.RouteFile, schedule); err != nil {
		return "", err
	}
	logrus.Debugf("Generated %d departures for seed %d", len(schedule), seed)
	return g.RouteFile, nil
}
