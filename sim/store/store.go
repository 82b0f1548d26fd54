// Package store sends per-episode aggregates to an external result sink.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tlcs-sim/tlcs/sim"
)

const (
	DefaultDatabase   = "tlcs"
	DefaultCollection = "episodes"
)

// EpisodeSink receives every completed episode of a session.
type EpisodeSink interface {
	Record(ctx context.Context, run RunInfo, stats sim.EpisodeStats) error
	Close(ctx context.Context) error
}

// RunInfo identifies the session an episode belongs to.
type RunInfo struct {
	Name      string // run directory name, e.g. model_3
	Policy    string
	StartedAt time.Time
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Record(context.Context, RunInfo, sim.EpisodeStats) error {
	return nil
}

func (NopSink) Close(context.Context) error {
	return nil
}

// MongoConfig locates the collection episodes are written to.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoSink inserts one document per episode.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to cfg.URI and verifies the server is reachable.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	logrus.Infof("Recording episodes to %s.%s", cfg.Database, cfg.Collection)
	return &MongoSink{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (m *MongoSink) Record(ctx context.Context, run RunInfo, stats sim.EpisodeStats) error {
	if _, err := m.coll.InsertOne(ctx, episodeDocument(run, stats)); err != nil {
		return fmt.Errorf("inserting episode %d: %w", stats.Episode+1, err)
	}
	return nil
}

func (m *MongoSink) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func episodeDocument(run RunInfo, stats sim.EpisodeStats) bson.M {
	return bson.M{
		"run":                run.Name,
		"policy":             run.Policy,
		"started_at":         run.StartedAt,
		"episode":            stats.Episode + 1,
		"steps":              stats.Steps,
		"decisions":          stats.Decisions,
		"sum_neg_reward":     stats.SumNegReward,
		"cumulative_delay_s": stats.SumWaitingTime,
		"sum_queue_length":   stats.SumQueueLength,
		"avg_queue_length":   stats.AvgQueueLength,
		"simulation_time_s":  stats.SimulationTime.Seconds(),
	}
}
