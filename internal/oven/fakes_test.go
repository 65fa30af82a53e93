package oven

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"anova_oven/internal/models"
)

var errConnClosed = errors.New("use of closed connection")

// fakeConn delivers frames pushed into in; closing in ends the stream.
type fakeConn struct {
	in     chan []byte
	out    chan map[string]any
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan map[string]any, 16),
		closed: make(chan struct{}),
	}
}

// emptyConn closes before delivering anything.
func emptyConn() *fakeConn {
	c := newFakeConn()
	close(c.in)
	return c
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b, ok := <-f.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, b, nil
	case <-f.closed:
		return 0, nil, errConnClosed
	}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	select {
	case <-f.closed:
		return errConnClosed
	default:
	}
	m, _ := v.(map[string]any)
	f.out <- m
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out queued connections in order and records dialed URLs.
type fakeDialer struct {
	conns chan *fakeConn
	mu    sync.Mutex
	urls  []string
}

func newFakeDialer(conns ...*fakeConn) *fakeDialer {
	d := &fakeDialer{conns: make(chan *fakeConn, 16)}
	for _, c := range conns {
		d.conns <- c
	}
	return d
}

func (d *fakeDialer) Dial(ctx context.Context, rawURL string, _ http.Header) (Conn, error) {
	d.mu.Lock()
	d.urls = append(d.urls, rawURL)
	d.mu.Unlock()
	select {
	case c := <-d.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
		return nil, errors.New("no connection queued")
	}
}

func (d *fakeDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}

type tokenServer struct {
	*httptest.Server
	calls atomic.Int32
}

func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "app-key" {
			t.Errorf("key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

const okTokenBody = `{"access_token":"access-2","refresh_token":"refresh-2","expires_in":"3600"}`

func testConfig(tokenURL string) Config {
	cfg := DefaultConfig()
	cfg.AppKey = "app-key"
	cfg.GatewayURL = "wss://gateway.test/"
	cfg.TokenURL = tokenURL
	cfg.CommandTimeout = time.Second
	cfg.DiscoveryTimeout = 50 * time.Millisecond
	cfg.DiscoveryPoll = 5 * time.Millisecond
	cfg.ReconnectCooldown = time.Millisecond
	return cfg
}

var testCreds = models.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}

// recorder is a Listener that records every notification.
type recorder struct {
	mu       sync.Mutex
	states   chan models.Device
	devices  chan models.Device
	tokens   chan models.Credentials
	targets  chan models.Target
	stateErr error
}

func newRecorder() *recorder {
	return &recorder{
		states:  make(chan models.Device, 32),
		devices: make(chan models.Device, 32),
		tokens:  make(chan models.Credentials, 32),
		targets: make(chan models.Target, 32),
	}
}

func (r *recorder) OnState(_ context.Context, d models.Device, _ *models.State) error {
	r.states <- d
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.stateErr
	r.stateErr = nil
	return err
}

func (r *recorder) OnNewDevice(_ context.Context, d models.Device) error {
	r.devices <- d
	return nil
}

func (r *recorder) OnNewToken(_ context.Context, c models.Credentials) error {
	r.tokens <- c
	return nil
}

func (r *recorder) OnTargetReached(_ context.Context, _ models.Device, t models.Target) error {
	r.targets <- t
	return nil
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func wifiListFrame(t *testing.T, ids ...string) []byte {
	t.Helper()
	list := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		list = append(list, map[string]any{"cookerId": id, "type": "oven_v2", "name": "Oven " + id})
	}
	return mustJSON(t, map[string]any{"command": EventWifiList, "payload": list})
}

func baseNodes() map[string]any {
	return map[string]any{
		"temperatureBulbs": map[string]any{
			"mode": "dry",
			"dry": map[string]any{
				"current":  map[string]any{"celsius": 24.5, "fahrenheit": 76.1},
				"setpoint": map[string]any{"celsius": 200.0, "fahrenheit": 392.0},
			},
			"wet": map[string]any{
				"current":    map[string]any{"celsius": 22.0},
				"dosed":      true,
				"doseFailed": false,
			},
		},
		"steamGenerators": map[string]any{
			"mode":             "idle",
			"relativeHumidity": map[string]any{"current": 35.0},
		},
		"heatingElements": map[string]any{
			"top":    map[string]any{"watts": 0, "on": false},
			"bottom": map[string]any{"watts": 1300, "on": true},
			"rear":   map[string]any{"watts": 0, "on": true},
		},
		"timer":     map[string]any{"mode": "idle", "initial": 0, "current": 0},
		"lamp":      map[string]any{"on": true},
		"door":      map[string]any{"closed": true},
		"waterTank": map[string]any{"empty": false},
		"fan":       map[string]any{"speed": 100},
	}
}

func statePayload(cookerID string, nodes, cook map[string]any) map[string]any {
	state := map[string]any{
		"state":      map[string]any{"mode": "COOK"},
		"systemInfo": map[string]any{"firmwareVersion": "2.1.0"},
		"nodes":      nodes,
	}
	if cook != nil {
		state["cook"] = cook
	}
	return map[string]any{"cookerId": cookerID, "type": "oven_v2", "state": state}
}

func stateFrame(t *testing.T, cookerID string, nodes, cook map[string]any) []byte {
	t.Helper()
	return mustJSON(t, map[string]any{"command": EventState, "payload": statePayload(cookerID, nodes, cook)})
}

func responseFrame(t *testing.T, requestID string, payload any) []byte {
	t.Helper()
	return mustJSON(t, map[string]any{"command": EventResponse, "requestId": requestID, "payload": payload})
}

func startRun(c *Client) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- c.Run(context.Background()) }()
	return errc
}

func waitRun(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func waitPhase(t *testing.T, c *Client, phase string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.Phase() != phase {
		if time.Now().After(deadline) {
			t.Fatalf("phase = %s, want %s", c.Phase(), phase)
		}
		time.Sleep(time.Millisecond)
	}
}

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		var zero T
		return zero
	}
}
