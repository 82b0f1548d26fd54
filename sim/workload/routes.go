package workload

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// VehicleType is the single vehicle class every departure uses.
const VehicleType = "standard_car"

type routesDoc struct {
	XMLName  xml.Name      `xml:"routes"`
	VTypes   []vTypeElem   `xml:"vType"`
	Routes   []routeElem   `xml:"route"`
	Vehicles []vehicleElem `xml:"vehicle"`
}

type vTypeElem struct {
	ID       string `xml:"id,attr"`
	Accel    string `xml:"accel,attr"`
	Decel    string `xml:"decel,attr"`
	Length   string `xml:"length,attr"`
	MinGap   string `xml:"minGap,attr"`
	MaxSpeed string `xml:"maxSpeed,attr"`
	Sigma    string `xml:"sigma,attr"`
}

type routeElem struct {
	ID    string `xml:"id,attr"`
	Edges string `xml:"edges,attr"`
}

type vehicleElem struct {
	ID          string `xml:"id,attr"`
	Type        string `xml:"type,attr"`
	Route       string `xml:"route,attr"`
	Depart      string `xml:"depart,attr"`
	DepartLane  string `xml:"departLane,attr"`
	DepartSpeed string `xml:"departSpeed,attr"`
}

// RouteEdges returns the edge list of a route id such as "W_N": the incoming
// edge W2TL followed by the outgoing edge TL2N.
func RouteEdges(route string) (string, error) {
	from, to, ok := strings.Cut(route, "_")
	if !ok || len(from) != 1 || len(to) != 1 || from == to || !strings.Contains("NSEW", from) || !strings.Contains("NSEW", to) {
		return "", fmt.Errorf("malformed route id %q", route)
	}
	return fmt.Sprintf("%s2TL TL2%s", from, to), nil
}

// WriteRoutes encodes the schedule as a SUMO routes document.
func WriteRoutes(w io.Writer, schedule Schedule) error {
	doc := routesDoc{
		VTypes: []vTypeElem{{
			ID: VehicleType, Accel: "1.0", Decel: "4.5", Length: "5.0",
			MinGap: "2.5", MaxSpeed: "25", Sigma: "0.5",
		}},
	}
	for _, group := range [][]string{TurnRoutes, StraightRoutes} {
		for _, r := range group {
			edges, err := RouteEdges(r)
			if err != nil {
				return err
			}
			doc.Routes = append(doc.Routes, routeElem{ID: r, Edges: edges})
		}
	}
	for _, d := range schedule {
		doc.Vehicles = append(doc.Vehicles, vehicleElem{
			ID:          d.ID,
			Type:        VehicleType,
			Route:       d.Route,
			Depart:      strconv.Itoa(d.Step),
			DepartLane:  "random",
			DepartSpeed: "10",
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding routes: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRouteFile writes the schedule to path, replacing any previous file.
func WriteRouteFile(path string, schedule Schedule) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating route file: %w", err)
	}
	if err := WriteRoutes(f, schedule); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadRoutes parses a routes document back into a schedule.
func ReadRoutes(r io.Reader) (Schedule, error) {
	var doc routesDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding routes: %w", err)
	}
	schedule := make(Schedule, 0, len(doc.Vehicles))
	for _, v := range doc.Vehicles {
		step, err := strconv.Atoi(v.Depart)
		if err != nil {
			return nil, fmt.Errorf("vehicle %q: depart %q: %w", v.ID, v.Depart, err)
		}
		schedule = append(schedule, Departure{ID: v.ID, Route: v.Route, Step: step})
	}
	return schedule, nil
}
