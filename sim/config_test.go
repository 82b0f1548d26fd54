package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEpisodeConfig_Validate(t *testing.T) {
	assert.NoError(t, EpisodeConfig{MaxSteps: 5400, GreenDuration: 10, YellowDuration: 4}.Validate())

	err := EpisodeConfig{MaxSteps: 0, GreenDuration: -1, YellowDuration: 4}.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "max steps")
		assert.Contains(t, err.Error(), "green duration")
		assert.NotContains(t, err.Error(), "yellow duration")
	}
}

func TestEpisodeConfig_DurationFor(t *testing.T) {
	cfg := EpisodeConfig{MaxSteps: 100, GreenDuration: 10, YellowDuration: 4}
	for p := Phase(0); p < NumPhases; p++ {
		want := 10
		if p%2 == 1 {
			want = 4
		}
		assert.Equal(t, want, cfg.DurationFor(p), p.String())
	}
}
