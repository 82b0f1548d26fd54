package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tlcs-sim/tlcs/sim/internal/testutil"
)

var _ Engine = (*testutil.FakeEngine)(nil)
var _ RouteGenerator = (*testutil.FakeGenerator)(nil)

// newTestSimulator wires a Simulator to a scripted engine and a no-op generator.
func newTestSimulator(t *testing.T, cfg EpisodeConfig, policy PhasePolicy) (*Simulator, *testutil.FakeEngine, *testutil.FakeGenerator) {
	t.Helper()
	engine := testutil.NewFakeEngine()
	gen := &testutil.FakeGenerator{}
	s, err := NewSimulator(cfg, []string{"sumo", "-c", "intersection/sumo_config.sumocfg"}, engine, gen, policy)
	require.NoError(t, err)
	return s, engine, gen
}

// staticHalting sets a constant halted count per incoming edge.
func staticHalting(e *testutil.FakeEngine, n, s, east, w int) {
	e.Halting["N2TL"] = n
	e.Halting["S2TL"] = s
	e.Halting["E2TL"] = east
	e.Halting["W2TL"] = w
}
