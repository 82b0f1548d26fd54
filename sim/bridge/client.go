// Package bridge implements sim.Engine on top of a SUMO bridge process.
//
// The bridge owns the SUMO process and exposes its control API over a Unix or
// TCP socket. Every message is a 4-byte big-endian length prefix followed by a
// msgpack body. Requests carry an endpoint name and optional parameters;
// responses carry an ok flag, an error message and an endpoint-specific value.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotStarted is returned by queries issued before Start or after Close.
var ErrNotStarted = errors.New("bridge: simulation not started")

// RemoteError is a failure reported by the bridge for one request.
type RemoteError struct {
	Endpoint string
	Message  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("bridge %s: %s", e.Endpoint, e.Message)
}

const (
	endpointStart       = "start"
	endpointStop        = "stop"
	endpointStep        = "step"
	endpointEdgeHalting = "edge_halting"
	endpointVehicleIDs  = "vehicle_ids"
	endpointVehicleWait = "vehicle_wait"
	endpointVehicleRoad = "vehicle_road"
	endpointSetPhase    = "set_phase"
)

type request struct {
	Endpoint string         `msgpack:"endpoint"`
	Params   map[string]any `msgpack:"params,omitempty"`
}

type response struct {
	OK    bool               `msgpack:"ok"`
	Error string             `msgpack:"error,omitempty"`
	Value msgpack.RawMessage `msgpack:"value,omitempty"`
}

// DialFunc opens the connection to the bridge.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the default net.Dialer.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) { c.dial = dial }
}

// WithDialTimeout bounds connection establishment. Zero disables the bound.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// Client talks to one bridge. It is not safe for concurrent use; the episode
// loop issues one request at a time.
type Client struct {
	network     string
	address     string
	dialTimeout time.Duration
	dial        DialFunc
	conn        net.Conn
}

// ParseAddress splits a bridge address into network and address.
// Accepted forms: "unix:///path.sock", "tcp://host:port", "/path.sock"
// (unix) and "host:port" (tcp).
func ParseAddress(addr string) (network, address string, err error) {
	switch {
	case addr == "":
		return "", "", fmt.Errorf("empty bridge address")
	case strings.HasPrefix(addr, "unix://"):
		address = strings.TrimPrefix(addr, "unix://")
		network = "unix"
	case strings.HasPrefix(addr, "tcp://"):
		address = strings.TrimPrefix(addr, "tcp://")
		network = "tcp"
	case strings.HasPrefix(addr, "/") || strings.HasSuffix(addr, ".sock"):
		return "unix", addr, nil
	default:
		address = addr
		network = "tcp"
	}
	if address == "" {
		return "", "", fmt.Errorf("bridge address %q has no target", addr)
	}
	return network, address, nil
}

// NewClient creates a Client for addr. No connection is made until Start.
func NewClient(addr string, opts ...Option) (*Client, error) {
	network, address, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		network:     network,
		address:     address,
		dialTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dial == nil {
		c.dial = (&net.Dialer{}).DialContext
	}
	return c, nil
}

// Start connects to the bridge and asks it to launch a simulation with cmd.
func (c *Client) Start(ctx context.Context, cmd []string) error {
	if c.conn == nil {
		dialCtx := ctx
		if c.dialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, c.dialTimeout)
			defer cancel()
		}
		conn, err := c.dial(dialCtx, c.network, c.address)
		if err != nil {
			return fmt.Errorf("connecting to bridge at %s://%s: %w", c.network, c.address, err)
		}
		c.conn = conn
		logrus.Debugf("Connected to bridge at %s://%s", c.network, c.address)
	}
	if err := c.call(ctx, endpointStart, map[string]any{"cmd": cmd}, nil); err != nil {
		_ = c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// StopTimeout bounds the stop exchange issued by Close.
const StopTimeout = 5 * time.Second

// Close stops the running simulation and drops the connection. The stop
// request is sent even when ctx is already cancelled, bounded by StopTimeout.
// Calling Close without a connection is a no-op.
func (c *Client) Close(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	_ = c.conn.SetDeadline(time.Time{})
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), StopTimeout)
	defer cancel()
	stopErr := c.call(stopCtx, endpointStop, nil, nil)
	closeErr := c.conn.Close()
	c.conn = nil
	return errors.Join(stopErr, closeErr)
}

// Step advances the simulation by one step.
func (c *Client) Step(ctx context.Context) error {
	return c.call(ctx, endpointStep, nil, nil)
}

// EdgeHaltingNumber returns the halted vehicles on edgeID in the last step.
func (c *Client) EdgeHaltingNumber(ctx context.Context, edgeID string) (int, error) {
	var n int
	err := c.call(ctx, endpointEdgeHalting, map[string]any{"edge": edgeID}, &n)
	return n, err
}

// VehicleIDs lists the vehicles currently in the network.
func (c *Client) VehicleIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.call(ctx, endpointVehicleIDs, nil, &ids)
	return ids, err
}

// VehicleWaitingTime returns the accumulated waiting seconds of a vehicle.
func (c *Client) VehicleWaitingTime(ctx context.Context, vehicleID string) (float64, error) {
	var wait float64
	err := c.call(ctx, endpointVehicleWait, map[string]any{"vehicle": vehicleID}, &wait)
	return wait, err
}

// VehicleRoad returns the edge a vehicle is on.
func (c *Client) VehicleRoad(ctx context.Context, vehicleID string) (string, error) {
	var road string
	err := c.call(ctx, endpointVehicleRoad, map[string]any{"vehicle": vehicleID}, &road)
	return road, err
}

// SetPhase switches traffic light tlID to phase.
func (c *Client) SetPhase(ctx context.Context, tlID string, phase int) error {
	return c.call(ctx, endpointSetPhase, map[string]any{"tl": tlID, "phase": phase}, nil)
}

// call performs one request/response exchange. Cancelling ctx interrupts a
// blocked read or write.
func (c *Client) call(ctx context.Context, endpoint string, params map[string]any, out any) error {
	if c.conn == nil {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	conn := c.conn
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	payload, err := msgpack.Marshal(&request{Endpoint: endpoint, Params: params})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", endpoint, err)
	}
	if err := writeFrame(conn, payload); err != nil {
		return c.wrapIOError(ctx, endpoint, "sending", err)
	}
	body, err := readFrame(conn)
	if err != nil {
		return c.wrapIOError(ctx, endpoint, "reading", err)
	}

	var resp response
	if err := msgpack.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	if !resp.OK {
		return &RemoteError{Endpoint: endpoint, Message: resp.Error}
	}
	if out == nil {
		return nil
	}
	if len(resp.Value) == 0 {
		return fmt.Errorf("bridge %s: response has no value", endpoint)
	}
	if err := msgpack.Unmarshal(resp.Value, out); err != nil {
		return fmt.Errorf("decoding %s value: %w", endpoint, err)
	}
	return nil
}

func (c *Client) wrapIOError(ctx context.Context, endpoint, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s request: %w", op, endpoint, ctxErr)
	}
	return fmt.Errorf("%s %s request: %w", op, endpoint, err)
}
