package sim

import (
	"sort"

	"github.com/samber/lo"
)

// WaitingTable maps vehicle ids to their accumulated waiting seconds.
// After every Observe pass it only holds vehicles on an incoming edge.
type WaitingTable map[string]float64

// NewWaitingTable returns an empty table.
func NewWaitingTable() WaitingTable {
	return make(WaitingTable)
}

// Observe records the waiting time of a vehicle on an incoming edge, or drops
// it once the vehicle is on any other road.
func (t WaitingTable) Observe(vehicleID, roadID string, wait float64) {
	if IsIncomingEdge(roadID) {
		t[vehicleID] = wait
		return
	}
	delete(t, vehicleID)
}

// Retain drops every vehicle not in present, i.e. vehicles that have left the network.
func (t WaitingTable) Retain(present []string) {
	keep := lo.SliceToMap(present, func(id string) (string, struct{}) { return id, struct{}{} })
	for id := range t {
		if _, ok := keep[id]; !ok {
			delete(t, id)
		}
	}
}

// Total returns the summed waiting time. Summation runs in vehicle-id order
// so the result does not depend on map iteration.
func (t WaitingTable) Total() float64 {
	ids := lo.Keys(map[string]float64(t))
	sort.Strings(ids)
	return lo.SumBy(ids, func(id string) float64 { return t[id] })
}
