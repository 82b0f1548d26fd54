package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tlcs-sim/tlcs/sim"
	"github.com/tlcs-sim/tlcs/sim/trace"
	"github.com/tlcs-sim/tlcs/sim/workload"
)

// DefaultSettingsFile is the settings file read when --config is not given.
const DefaultSettingsFile = "tlcs_settings.yaml"

// Settings is the session configuration read from the settings file.
// Keys missing from the file keep their DefaultSettings value. A non-empty
// Scenario replaces NCarsGenerated and Arrival with the preset's values.
type Settings struct {
	GUI             bool                 `yaml:"gui"`
	TotalEpisodes   int                  `yaml:"total_episodes"`
	MaxSteps        int                  `yaml:"max_steps"`
	NCarsGenerated  int                  `yaml:"n_cars_generated"`
	GreenDuration   int                  `yaml:"green_duration"`
	YellowDuration  int                  `yaml:"yellow_duration"`
	SumocfgFileName string               `yaml:"sumocfg_file_name"`
	ModelsPathName  string               `yaml:"models_path_name"`
	NetworkDir      string               `yaml:"network_dir"`
	RouteFile       string               `yaml:"route_file"`
	BridgeAddress   string               `yaml:"bridge_address"`
	Policy          string               `yaml:"policy"`
	Trace           string               `yaml:"trace"`
	Scenario        string               `yaml:"scenario"`
	Arrival         workload.ArrivalSpec `yaml:"arrival"`
	Mongo           MongoSettings        `yaml:"mongo"`
}

// MongoSettings configures the optional episode sink. An empty URI disables it.
type MongoSettings struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// DefaultSettings returns the settings used for keys absent from the file.
func DefaultSettings() Settings {
	return Settings{
		GUI:             false,
		TotalEpisodes:   5,
		MaxSteps:        5400,
		NCarsGenerated:  1000,
		GreenDuration:   10,
		YellowDuration:  4,
		SumocfgFileName: "sumo_config.sumocfg",
		ModelsPathName:  "models",
		NetworkDir:      "intersection",
		RouteFile:       "episode_routes.rou.xml",
		BridgeAddress:   "unix:///tmp/tlcs_bridge.sock",
		Policy:          "round-robin",
		Trace:           string(trace.TraceLevelNone),
		Arrival:         workload.ArrivalSpec{Process: "weibull", Shape: workload.DefaultWeibullShape},
	}
}

// LoadSettings reads path on top of DefaultSettings. Unknown keys are errors.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, s.Validate()
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if err := s.applyScenario(); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// applyScenario copies the traffic preset named by Scenario, if any.
func (s *Settings) applyScenario() error {
	if s.Scenario == "" {
		return nil
	}
	sc, err := workload.LookupScenario(s.Scenario)
	if err != nil {
		return err
	}
	s.NCarsGenerated = sc.NCars
	s.Arrival = sc.Arrival
	return nil
}

// Validate rejects settings that cannot produce a session.
func (s Settings) Validate() error {
	var errs []error
	if s.TotalEpisodes <= 0 {
		errs = append(errs, fmt.Errorf("total_episodes must be > 0, got %d", s.TotalEpisodes))
	}
	if s.NCarsGenerated < 0 {
		errs = append(errs, fmt.Errorf("n_cars_generated must be >= 0, got %d", s.NCarsGenerated))
	}
	if err := s.EpisodeConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.SumocfgFileName == "" {
		errs = append(errs, errors.New("sumocfg_file_name must not be empty"))
	}
	if s.ModelsPathName == "" {
		errs = append(errs, errors.New("models_path_name must not be empty"))
	}
	if s.RouteFile == "" {
		errs = append(errs, errors.New("route_file must not be empty"))
	}
	if s.BridgeAddress == "" {
		errs = append(errs, errors.New("bridge_address must not be empty"))
	}
	if !sim.IsValidPhasePolicy(s.Policy) {
		errs = append(errs, fmt.Errorf("unknown policy %q", s.Policy))
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		errs = append(errs, fmt.Errorf("unknown trace level %q", s.Trace))
	}
	if err := s.Arrival.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EpisodeConfig extracts the per-episode budget.
func (s Settings) EpisodeConfig() sim.EpisodeConfig {
	return sim.EpisodeConfig{
		MaxSteps:       s.MaxSteps,
		GreenDuration:  s.GreenDuration,
		YellowDuration: s.YellowDuration,
	}
}

// SumocfgPath is the SUMO configuration inside the network directory.
func (s Settings) SumocfgPath() string {
	return filepath.Join(s.NetworkDir, s.SumocfgFileName)
}

// RouteFilePath is where the generator writes the routes of each episode.
// The SUMO configuration is expected to reference this file.
func (s Settings) RouteFilePath() string {
	return filepath.Join(s.NetworkDir, s.RouteFile)
}
