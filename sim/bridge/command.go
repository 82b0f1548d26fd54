package bridge

import (
	"os"
	"path/filepath"
	"strconv"
)

// SumoCommand builds the command line the bridge uses to launch SUMO.
// The binary is taken from $SUMO_HOME/bin when SUMO_HOME is set, otherwise
// it is resolved from PATH by the bridge.
func SumoCommand(gui bool, cfgFile string, maxSteps int) []string {
	binary := "sumo"
	if gui {
		binary = "sumo-gui"
	}
	if home := os.Getenv("SUMO_HOME"); home != "" {
		binary = filepath.Join(home, "bin", binary)
	}
	return []string{
		binary,
		"-c", cfgFile,
		"--no-step-log", "true",
		"--waiting-time-memory", strconv.Itoa(maxSteps),
	}
}
