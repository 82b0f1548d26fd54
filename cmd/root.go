package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tlcs-sim/tlcs/sim/bridge"
	"github.com/tlcs-sim/tlcs/sim/store"
	"github.com/tlcs-sim/tlcs/sim/workload"
)

var (
	// CLI flags shared by run and generate
	configPath string // Settings file
	logLevel   string // Log verbosity level
	scenario   string // Traffic preset

	// CLI flags overriding the settings file
	gui        bool   // Launch sumo-gui instead of sumo
	episodes   int    // Number of episodes
	bridgeAddr string // Bridge socket address
	policyName string // Phase policy
	traceLevel string // Decision trace level
	mongoURI   string // MongoDB URI of the episode sink

	// CLI flags for generate
	seed      int64  // Route seed (episode index)
	routesOut string // Route file destination
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tlcs",
	Short: "Evaluation runner for a signalized four-way intersection in SUMO",
}

// runCmd runs a full evaluation session
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all evaluation episodes and save the session plots",
	Run: func(cmd *cobra.Command, args []string) {
		if err := setupLogging(logLevel); err != nil {
			logrus.Fatalf("%v", err)
		}
		settings := mustLoadSettings(cmd)

		client, err := bridge.NewClient(settings.BridgeAddress)
		if err != nil {
			logrus.Fatalf("Invalid bridge address: %v", err)
		}
		generator := workload.NewGenerator(settings.MaxSteps, settings.NCarsGenerated, settings.Arrival, settings.RouteFilePath())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var sink store.EpisodeSink = store.NopSink{}
		if settings.Mongo.URI != "" {
			mongoSink, err := store.NewMongoSink(ctx, store.MongoConfig{
				URI:        settings.Mongo.URI,
				Database:   settings.Mongo.Database,
				Collection: settings.Mongo.Collection,
			})
			if err != nil {
				logrus.Fatalf("Episode sink unavailable: %v", err)
			}
			sink = mongoSink
		}

		runDir, err := executeSession(ctx, session{
			settings:     settings,
			settingsPath: configPath,
			engine:       client,
			generator:    generator,
			sink:         sink,
			out:          os.Stdout,
		})
		if err != nil {
			logrus.Errorf("Session failed: %v", err)
			stop()
			os.Exit(1)
		}
		logrus.Infof("Session complete, results in %s", runDir)
	},
}

// generateCmd writes the route file of a single episode
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the route file of one episode without simulating it",
	Run: func(cmd *cobra.Command, args []string) {
		if err := setupLogging(logLevel); err != nil {
			logrus.Fatalf("%v", err)
		}
		settings := mustLoadSettings(cmd)

		out := settings.RouteFilePath()
		if routesOut != "" {
			out = routesOut
		}
		path, vehicles, err := generateRoutes(settings, seed, out)
		if err != nil {
			logrus.Fatalf("Generating routes: %v", err)
		}
		logrus.Infof("Routes for seed %d written to %s (%d vehicles)", seed, path, vehicles)
	},
}

// generateRoutes writes the route file of one seed to out and reads it back,
// returning its path and the number of vehicles it schedules.
func generateRoutes(settings Settings, seed int64, out string) (string, int, error) {
	generator := workload.NewGenerator(settings.MaxSteps, settings.NCarsGenerated, settings.Arrival, out)
	path, err := generator.GenerateRouteFile(seed)
	if err != nil {
		return "", 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	schedule, err := workload.ReadRoutes(f)
	if err != nil {
		return "", 0, fmt.Errorf("verifying %s: %w", path, err)
	}
	if len(schedule) != settings.NCarsGenerated {
		return "", 0, fmt.Errorf("verifying %s: %d vehicles, want %d", path, len(schedule), settings.NCarsGenerated)
	}
	return path, len(schedule), nil
}

// mustLoadSettings reads the settings file and applies the flags the user set.
func mustLoadSettings(cmd *cobra.Command) Settings {
	settings, err := LoadSettings(configPath)
	if err != nil {
		logrus.Fatalf("Invalid settings: %v", err)
	}
	applyFlagOverrides(cmd, &settings)
	if err := settings.applyScenario(); err != nil {
		logrus.Fatalf("Invalid settings: %v", err)
	}
	if err := settings.Validate(); err != nil {
		logrus.Fatalf("Invalid settings: %v", err)
	}
	return settings
}

// applyFlagOverrides copies explicitly set flags over the file values.
// Flags left at their defaults never override the file.
func applyFlagOverrides(cmd *cobra.Command, s *Settings) {
	flags := cmd.Flags()
	if flags.Changed("scenario") {
		s.Scenario = scenario
	}
	if flags.Changed("gui") {
		s.GUI = gui
	}
	if flags.Changed("episodes") {
		s.TotalEpisodes = episodes
	}
	if flags.Changed("bridge") {
		s.BridgeAddress = bridgeAddr
	}
	if flags.Changed("policy") {
		s.Policy = policyName
	}
	if flags.Changed("trace") {
		s.Trace = traceLevel
	}
	if flags.Changed("mongo-uri") {
		s.Mongo.URI = mongoURI
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", DefaultSettingsFile, "Settings file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&scenario, "scenario", "", "Traffic preset (standard, light, heavy, uniform, bursty); replaces n_cars_generated and arrival")

	runCmd.Flags().BoolVar(&gui, "gui", false, "Launch sumo-gui instead of sumo")
	runCmd.Flags().IntVar(&episodes, "episodes", 0, "Number of episodes (overrides total_episodes)")
	runCmd.Flags().StringVar(&bridgeAddr, "bridge", "", "Bridge address: unix:///path.sock or tcp://host:port")
	runCmd.Flags().StringVar(&policyName, "policy", "", "Phase policy (round-robin, max-queue)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI; every episode is recorded when set")

	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Route seed (the episode index)")
	generateCmd.Flags().StringVar(&routesOut, "out", "", "Route file destination (default: route file from settings)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
}
