package workload

import (
	"fmt"
	"sort"
)

// Built-in traffic scenarios. Each fixes the number of cars per episode and
// the departure-time distribution; the route mix is always the same.

// Scenario is a named traffic preset.
type Scenario struct {
	Name    string
	NCars   int
	Arrival ArrivalSpec
}

// ScenarioStandard is the reference load: 1000 cars with departures peaking
// early and thinning towards the end of the episode.
func ScenarioStandard() Scenario {
	return Scenario{Name: "standard", NCars: 1000, Arrival: ArrivalSpec{Process: "weibull", Shape: DefaultWeibullShape}}
}

// ScenarioLight halves the reference load.
func ScenarioLight() Scenario {
	return Scenario{Name: "light", NCars: 500, Arrival: ArrivalSpec{Process: "weibull", Shape: DefaultWeibullShape}}
}

// ScenarioHeavy saturates the intersection for most of the episode.
func ScenarioHeavy() Scenario {
	return Scenario{Name: "heavy", NCars: 4000, Arrival: ArrivalSpec{Process: "weibull", Shape: DefaultWeibullShape}}
}

// ScenarioUniform spreads the reference load evenly over the episode.
func ScenarioUniform() Scenario {
	return Scenario{Name: "uniform", NCars: 1000, Arrival: ArrivalSpec{Process: "uniform"}}
}

// ScenarioBursty clusters departures: a gamma shape below 1 puts most of
// them into a few dense platoons.
func ScenarioBursty() Scenario {
	return Scenario{Name: "bursty", NCars: 1000, Arrival: ArrivalSpec{Process: "gamma", Shape: 0.5}}
}

var scenarios = map[string]func() Scenario{
	"standard": ScenarioStandard,
	"light":    ScenarioLight,
	"heavy":    ScenarioHeavy,
	"uniform":  ScenarioUniform,
	"bursty":   ScenarioBursty,
}

// LookupScenario returns the preset registered under name.
func LookupScenario(name string) (Scenario, error) {
	build, ok := scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q (valid: %v)", name, ScenarioNames())
	}
	return build(), nil
}

// ScenarioNames lists the registered presets in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
