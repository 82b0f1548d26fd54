package sim

import "fmt"

// Phase is a signal configuration of the intersection; values are the phase
// indices of the traffic light program in the network definition.
type Phase int

const (
	PhaseNSGreen   Phase = 0 // action 0 code 00
	PhaseNSYellow  Phase = 1
	PhaseNSRGreen  Phase = 2 // action 1 code 01
	PhaseNSRYellow Phase = 3
	PhaseEWGreen   Phase = 4 // action 2 code 10
	PhaseEWYellow  Phase = 5
	PhaseEWRGreen  Phase = 6 // action 3 code 11
	PhaseEWRYellow Phase = 7
)

const (
	// NumPhases is the number of phases in the traffic light program.
	NumPhases = 8
	// NumActions is the number of green/yellow pairs.
	NumActions = NumPhases / 2
)

var phaseNames = [NumPhases]string{
	"NS_GREEN", "NS_YELLOW", "NSR_GREEN", "NSR_YELLOW",
	"EW_GREEN", "EW_YELLOW", "EWR_GREEN", "EWR_YELLOW",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= NumPhases {
		return fmt.Sprintf("PHASE_%d", int(p))
	}
	return phaseNames[p]
}

// IsYellow reports whether p is the yellow half of its green/yellow pair.
func (p Phase) IsYellow() bool { return p%2 == 1 }

// Action returns the green/yellow pair index of p.
func (p Phase) Action() int { return int(p) / 2 }

// GreenPhase returns the green phase of an action.
func GreenPhase(action int) Phase { return Phase(action * 2) }

// YellowPhase returns the yellow phase following the green of an action.
func YellowPhase(action int) Phase { return Phase(action*2 + 1) }
