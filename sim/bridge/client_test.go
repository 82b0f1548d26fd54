package bridge

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tlcs-sim/tlcs/sim"
)

var _ sim.Engine = (*Client)(nil)

// fakeBridge answers requests on the server end of a net.Pipe.
type fakeBridge struct {
	requests []request
	handler  func(req request) response
	done     chan struct{}
}

func newFakeBridge(t *testing.T, handler func(req request) response) (*fakeBridge, *Client) {
	t.Helper()
	fb := &fakeBridge{handler: handler, done: make(chan struct{})}
	client, err := NewClient("unix:///tmp/test_bridge.sock", WithDialer(func(_ context.Context, network, address string) (net.Conn, error) {
		assert.Equal(t, "unix", network)
		assert.Equal(t, "/tmp/test_bridge.sock", address)
		clientEnd, serverEnd := net.Pipe()
		go fb.serve(serverEnd)
		return clientEnd, nil
	}))
	require.NoError(t, err)
	return fb, client
}

func (fb *fakeBridge) serve(conn net.Conn) {
	defer close(fb.done)
	defer conn.Close()
	for {
		body, err := readFrame(conn)
		if err != nil {
			return
		}
		var req request
		if err := msgpack.Unmarshal(body, &req); err != nil {
			return
		}
		fb.requests = append(fb.requests, req)
		resp := fb.handler(req)
		out, err := msgpack.Marshal(&resp)
		if err != nil {
			return
		}
		if err := writeFrame(conn, out); err != nil {
			return
		}
	}
}

func okValue(t *testing.T, v any) response {
	t.Helper()
	raw, err := msgpack.Marshal(v)
	require.NoError(t, err)
	return response{OK: true, Value: raw}
}

func TestClient_EpisodeExchange_DecodesValues(t *testing.T) {
	// GIVEN a bridge that knows two vehicles
	fb, client := newFakeBridge(t, func(req request) response {
		switch req.Endpoint {
		case endpointEdgeHalting:
			if req.Params["edge"] == "N2TL" {
				return okValue(t, 3)
			}
			return okValue(t, 0)
		case endpointVehicleIDs:
			return okValue(t, []string{"W_E_0", "N_S_1"})
		case endpointVehicleWait:
			return okValue(t, 12.5)
		case endpointVehicleRoad:
			return okValue(t, "W2TL")
		default:
			return response{OK: true}
		}
	})
	ctx := context.Background()

	// WHEN a full exchange is performed
	require.NoError(t, client.Start(ctx, []string{"sumo", "-c", "x.sumocfg"}))
	require.NoError(t, client.SetPhase(ctx, "TL", 4))
	require.NoError(t, client.Step(ctx))
	halted, err := client.EdgeHaltingNumber(ctx, "N2TL")
	require.NoError(t, err)
	ids, err := client.VehicleIDs(ctx)
	require.NoError(t, err)
	wait, err := client.VehicleWaitingTime(ctx, "W_E_0")
	require.NoError(t, err)
	road, err := client.VehicleRoad(ctx, "W_E_0")
	require.NoError(t, err)
	require.NoError(t, client.Close(ctx))
	<-fb.done

	// THEN the values are decoded
	assert.Equal(t, 3, halted)
	assert.Equal(t, []string{"W_E_0", "N_S_1"}, ids)
	assert.Equal(t, 12.5, wait)
	assert.Equal(t, "W2TL", road)

	// AND the requests reached the bridge in order with their params
	endpoints := make([]string, len(fb.requests))
	for i, r := range fb.requests {
		endpoints[i] = r.Endpoint
	}
	assert.Equal(t, []string{
		endpointStart, endpointSetPhase, endpointStep, endpointEdgeHalting,
		endpointVehicleIDs, endpointVehicleWait, endpointVehicleRoad, endpointStop,
	}, endpoints)
	assert.EqualValues(t, "TL", fb.requests[1].Params["tl"])
	assert.EqualValues(t, 4, fb.requests[1].Params["phase"])
	assert.Len(t, fb.requests[0].Params["cmd"], 3)
}

func TestClient_RemoteFailure_ReturnsRemoteError(t *testing.T) {
	// GIVEN a bridge that rejects steps
	fb, client := newFakeBridge(t, func(req request) response {
		if req.Endpoint == endpointStep {
			return response{OK: false, Error: "connection to SUMO lost"}
		}
		return response{OK: true}
	})
	ctx := context.Background()
	require.NoError(t, client.Start(ctx, nil))

	// WHEN stepping
	err := client.Step(ctx)

	// THEN a RemoteError names the endpoint
	var remote *RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, endpointStep, remote.Endpoint)
	assert.Contains(t, err.Error(), "connection to SUMO lost")

	require.NoError(t, client.Close(ctx))
	<-fb.done
}

func TestClient_QueryBeforeStart_ReturnsErrNotStarted(t *testing.T) {
	client, err := NewClient("127.0.0.1:8813")
	require.NoError(t, err)

	err = client.Step(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)

	// Close without a connection is a no-op
	assert.NoError(t, client.Close(context.Background()))
}

func TestClient_MissingValue_ReturnsError(t *testing.T) {
	fb, client := newFakeBridge(t, func(req request) response {
		return response{OK: true}
	})
	ctx := context.Background()
	require.NoError(t, client.Start(ctx, nil))

	_, err := client.EdgeHaltingNumber(ctx, "N2TL")
	assert.Error(t, err)

	require.NoError(t, client.Close(ctx))
	<-fb.done
}

func TestClient_CancelledContext_InterruptsCall(t *testing.T) {
	// GIVEN a bridge that never answers steps
	block := make(chan struct{})
	fb, client := newFakeBridge(t, func(req request) response {
		if req.Endpoint == endpointStep {
			<-block
		}
		return response{OK: true}
	})
	require.NoError(t, client.Start(context.Background(), nil))

	// WHEN the step context expires
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := client.Step(ctx)

	// THEN the call returns the context error
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the exchange is out of sync now; drop the connection
	close(block)
	_ = client.conn.Close()
	<-fb.done
}

func TestClient_Close_CancelledContext_StillStopsSimulation(t *testing.T) {
	// GIVEN a started simulation whose session context is then cancelled
	fb, client := newFakeBridge(t, func(req request) response {
		return response{OK: true}
	})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, client.Start(ctx, nil))
	cancel()

	// WHEN the client is closed with that context
	err := client.Close(ctx)
	<-fb.done

	// THEN the bridge was told to stop before the connection dropped
	require.NoError(t, err)
	endpoints := make([]string, len(fb.requests))
	for i, r := range fb.requests {
		endpoints[i] = r.Endpoint
	}
	assert.Equal(t, []string{endpointStart, endpointStop}, endpoints)
	assert.ErrorIs(t, client.Step(context.Background()), ErrNotStarted)
}

func TestClient_StartDialFailure_ReturnsError(t *testing.T) {
	client, err := NewClient("/tmp/none.sock", WithDialer(func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("no such file")
	}))
	require.NoError(t, err)

	err = client.Start(context.Background(), nil)
	assert.ErrorContains(t, err, "no such file")
	assert.ErrorIs(t, client.Step(context.Background()), ErrNotStarted)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		network string
		address string
		wantErr bool
	}{
		{"unix:///tmp/sumo_bridge.sock", "unix", "/tmp/sumo_bridge.sock", false},
		{"tcp://127.0.0.1:8813", "tcp", "127.0.0.1:8813", false},
		{"/tmp/sumo_bridge.sock", "unix", "/tmp/sumo_bridge.sock", false},
		{"bridge.sock", "unix", "bridge.sock", false},
		{"localhost:8813", "tcp", "localhost:8813", false},
		{"", "", "", true},
		{"unix://", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			network, address, err := ParseAddress(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.network, network)
			assert.Equal(t, tt.address, address)
		})
	}
}

func TestFrame_RoundTripAndZeroLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("hello")))
	require.NoError(t, writeFrame(&buf, nil))

	got, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = readFrame(&buf)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadFrame_OversizedHeader_ReturnsError(t *testing.T) {
	buf := bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff})
	_, err := readFrame(buf)
	assert.Error(t, err)
}
