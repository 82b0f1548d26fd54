// Package sim runs traffic-light evaluation episodes against an external
// microscopic traffic simulator.
//
// # Reading Guide
//
// Start with these files to understand the episode loop:
//   - engine.go: the narrow control interface the external simulator exposes
//   - phase.go: the eight signal phases of the intersection and the policies picking them
//   - simulator.go: the episode loop, step clamping and queue/wait sampling
//
// # Architecture
//
// The sim package defines interfaces and bookkeeping; collaborators live in
// sub-packages:
//   - sim/bridge/: Engine implementation talking to a SUMO bridge process
//   - sim/workload/: seeded vehicle-arrival schedules and SUMO route files
//   - sim/trace/: per-decision phase trace recording
//   - sim/report/: plots, data files and series statistics
//   - sim/store/: optional persistence of per-episode results
//
// # Key Interfaces
//
//   - Engine: start/stop, single-step advance, halting counts, vehicle queries, phase set
//   - RouteGenerator: produces the route file of an episode from its seed
//   - PhasePolicy: chooses the next phase to activate
package sim
