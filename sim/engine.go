package sim

import (
	"context"

	"github.com/samber/lo"
)

// TrafficLightID is the id of the controlled traffic light in the network definition.
const TrafficLightID = "TL"

// IncomingEdges lists the four approaches feeding the intersection, in sampling order.
var IncomingEdges = []string{"N2TL", "S2TL", "E2TL", "W2TL"}

// IsIncomingEdge reports whether edgeID is one of the four incoming approaches.
func IsIncomingEdge(edgeID string) bool {
	return lo.Contains(IncomingEdges, edgeID)
}

// Engine is the control surface of the external traffic simulator.
// Every call blocks until the engine has answered.
type Engine interface {
	// Start launches a simulation with the given engine command line.
	Start(ctx context.Context, cmd []string) error
	// Close ends the running simulation and releases the connection.
	// It must release the simulation even if ctx is already cancelled.
	Close(ctx context.Context) error
	// Step advances simulated time by one step.
	Step(ctx context.Context) error
	// EdgeHaltingNumber returns the number of halted vehicles on an edge during the last step.
	EdgeHaltingNumber(ctx context.Context, edgeID string) (int, error)
	// VehicleIDs returns the ids of all vehicles currently in the network.
	VehicleIDs(ctx context.Context) ([]string, error)
	// VehicleWaitingTime returns the accumulated waiting seconds of a vehicle.
	VehicleWaitingTime(ctx context.Context, vehicleID string) (float64, error)
	// VehicleRoad returns the id of the edge a vehicle is on.
	VehicleRoad(ctx context.Context, vehicleID string) (string, error)
	// SetPhase switches a traffic light to the given phase index.
	SetPhase(ctx context.Context, tlID string, phase int) error
}

// RouteGenerator produces the vehicle-arrival schedule of one episode.
type RouteGenerator interface {
	// GenerateRouteFile writes the route file for the given seed and returns its path.
	GenerateRouteFile(seed int64) (string, error)
}
