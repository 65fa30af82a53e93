package oven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"anova_oven/internal/codec"
	"anova_oven/internal/logger"
	"anova_oven/internal/metrics"
	"anova_oven/internal/models"
)

// Client is a session with the cloud gateway for one account.
type Client struct {
	cfg    Config
	dialer Dialer
	http   *http.Client
	log    *logger.Logger
	phase  *lifecycle
	now    func() time.Time

	mu        sync.Mutex
	creds     models.Credentials
	devices   map[string]*models.Device
	order     []string
	listeners []Listener
	conn      Conn
	stopCh    chan struct{}
	stopping  bool
	pending   chan json.RawMessage

	// cmdSlot admits one in-flight command; later callers queue in order of arrival.
	cmdSlot chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithHTTPClient replaces the client used for token renewal.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithDevices pre-seeds the registry, e.g. with devices persisted by an
// earlier run.
func WithDevices(devices ...models.Device) Option {
	return func(c *Client) {
		for _, d := range devices {
			c.addDeviceLocked(d)
		}
	}
}

// NewClient creates a session. It does not connect until Run is called.
func NewClient(cfg Config, creds models.Credentials, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger.Nop(),
		now:     time.Now,
		creds:   creds,
		devices: make(map[string]*models.Device),
		stopCh:  make(chan struct{}),
		cmdSlot: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = NewWebsocketDialer(cfg.Subprotocol, cfg.HandshakeTimeout)
	}
	c.phase = newLifecycle(c.log)
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Phase returns the current connection phase.
func (c *Client) Phase() string { return c.phase.current() }

// AddListener registers l for all notifications. Safe to call while running.
func (c *Client) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Credentials returns the current token pair.
func (c *Client) Credentials() models.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds
}

// Devices returns a snapshot of the registry in discovery order.
func (c *Client) Devices() []models.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Device, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.devices[id])
	}
	return out
}

// Device returns one device by cooker id.
func (c *Client) Device(cookerID string) (models.Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.devices[cookerID]
	if !ok {
		return models.Device{}, false
	}
	return *d, true
}

// GetDevices waits until at least one device is known, polling the registry.
// It returns ErrNoDevicesFound once the discovery timeout elapses.
func (c *Client) GetDevices(ctx context.Context) ([]models.Device, error) {
	deadline := time.NewTimer(c.cfg.DiscoveryTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(c.cfg.DiscoveryPoll)
	defer tick.Stop()

	for {
		if devices := c.Devices(); len(devices) > 0 {
			return devices, nil
		}
		select {
		case <-deadline.C:
			return nil, ErrNoDevicesFound
		case <-tick.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Run connects and processes frames until Stop is called or ctx is done, in
// which case it returns nil. It returns an ErrInvalidAuth error when the
// credentials are rejected.
func (c *Client) Run(ctx context.Context) error {
	stopCh := c.beginRun()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Stop()
		case <-done:
		}
	}()
	defer c.phase.fire(context.Background(), evStop)

	attempt := 0
	for !c.isStopping() {
		received, err := c.session(ctx)
		if err != nil {
			c.log.Errorw("ws_session_failed", "error", err)
		}
		if received {
			attempt = 0
		}
		c.log.Infow("ws_stream_closed", "frames_received", received, "attempt", attempt)
		if c.isStopping() {
			break
		}
		if attempt > 0 {
			return fmt.Errorf("%w: gateway closed the connection twice without sending a frame", ErrInvalidAuth)
		}

		c.phase.fire(ctx, evRenew)
		if err := c.RenewToken(ctx); err != nil {
			if c.isStopping() {
				break
			}
			return err
		}
		metrics.ReconnectsTotal.Inc()

		select {
		case <-time.After(c.cfg.ReconnectCooldown):
		case <-stopCh:
		}
		attempt++
	}
	c.log.Infow("session_stopped")
	return nil
}

// Stop ends Run and closes the open transport. Safe to call more than once.
func (c *Client) Stop() error {
	c.mu.Lock()
	if !c.stopping {
		c.stopping = true
		close(c.stopCh)
	}
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close gateway connection: %w", err)
	}
	return nil
}

func (c *Client) beginRun() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopping {
		c.stopCh = make(chan struct{})
	}
	c.stopping = false
	return c.stopCh
}

func (c *Client) isStopping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopping
}

// session runs one connection until it closes. received reports whether at
// least one frame arrived; err is set when a frame handler failed.
func (c *Client) session(ctx context.Context) (received bool, err error) {
	c.phase.fire(ctx, evDial)
	defer c.phase.fire(ctx, evClose)

	url, err := c.cfg.gatewayURL(c.Credentials().AccessToken)
	if err != nil {
		return false, err
	}
	conn, err := c.dialer.Dial(ctx, url, nil)
	if err != nil {
		c.log.Warnw("ws_dial_failed", "error", err)
		return false, nil
	}
	if !c.attach(conn) {
		conn.Close()
		return false, nil
	}
	defer c.detach(conn)
	c.phase.fire(ctx, evOpen)
	c.log.Infow("ws_connected")

	// Targets are tracked per device for the lifetime of one connection.
	targets := make(map[string]models.Target)
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !c.isStopping() {
				c.log.Infow("ws_read_ended", "error", err)
			}
			return received, nil
		}
		received = true
		if c.isStopping() {
			return received, nil
		}
		if mt != websocket.TextMessage {
			c.log.Debugw("ws_frame_ignored", "message_type", mt)
			continue
		}
		if err := c.handleFrame(ctx, data, targets); err != nil {
			return received, err
		}
	}
}

func (c *Client) attach(conn Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopping {
		return false
	}
	c.conn = conn
	return true
}

func (c *Client) detach(conn Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

func (c *Client) handleFrame(ctx context.Context, data []byte, targets map[string]models.Target) error {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		metrics.FramesTotal.WithLabelValues("invalid").Inc()
		c.log.Warnw("ws_frame_malformed", "error", err)
		return nil
	}

	switch f.Command {
	case EventState:
		metrics.FramesTotal.WithLabelValues(f.Command).Inc()
		return c.handleState(ctx, f.Payload, targets)
	case EventWifiList:
		metrics.FramesTotal.WithLabelValues(f.Command).Inc()
		return c.handleDeviceList(ctx, f.Payload)
	case EventResponse:
		metrics.FramesTotal.WithLabelValues(f.Command).Inc()
		c.resolve(f.RequestID, f.Payload)
		return nil
	default:
		metrics.FramesTotal.WithLabelValues("other").Inc()
		c.log.Debugw("ws_frame_unhandled", "command", f.Command)
		return nil
	}
}

func (c *Client) handleState(ctx context.Context, payload json.RawMessage, targets map[string]models.Target) error {
	cookerID, st, err := decodeState(payload, c.now())
	if err != nil {
		c.log.Warnw("state_dropped", "cooker_id", cookerID, "error", err)
		return nil
	}

	c.mu.Lock()
	d, ok := c.devices[cookerID]
	if ok {
		d.State = st
	}
	var device models.Device
	if ok {
		device = *d
	}
	listeners := c.listenersLocked()
	c.mu.Unlock()
	if !ok {
		c.log.Warnw("state_for_unknown_device", "cooker_id", cookerID)
		return nil
	}

	for _, l := range listeners {
		if err := l.OnState(ctx, device, st); err != nil {
			return fmt.Errorf("state listener for %s: %w", cookerID, err)
		}
	}

	prev := targets[cookerID]
	cur, reached := NextTarget(prev, st)
	targets[cookerID] = cur
	if !reached {
		return nil
	}
	metrics.TargetReachedTotal.Inc()
	c.log.Infow("target_reached", "cooker_id", cookerID, "kind", string(prev.Kind))
	for _, l := range listeners {
		if err := l.OnTargetReached(ctx, device, prev); err != nil {
			return fmt.Errorf("target listener for %s: %w", cookerID, err)
		}
	}
	return nil
}

func (c *Client) handleDeviceList(ctx context.Context, payload json.RawMessage) error {
	list, err := decodeDeviceList(payload)
	if err != nil {
		c.log.Warnw("device_list_dropped", "error", err)
		return nil
	}

	var added []models.Device
	c.mu.Lock()
	for _, d := range list {
		if _, seen := c.devices[d.CookerID]; seen {
			continue
		}
		c.addDeviceLocked(d)
		added = append(added, d)
	}
	listeners := c.listenersLocked()
	c.mu.Unlock()

	for _, d := range added {
		c.log.Infow("device_discovered", "cooker_id", d.CookerID, "type", d.Type)
		for _, l := range listeners {
			if err := l.OnNewDevice(ctx, d); err != nil {
				return fmt.Errorf("device listener for %s: %w", d.CookerID, err)
			}
		}
	}
	return nil
}

func (c *Client) addDeviceLocked(d models.Device) {
	if _, ok := c.devices[d.CookerID]; !ok {
		c.order = append(c.order, d.CookerID)
	}
	dev := d
	c.devices[d.CookerID] = &dev
}

func (c *Client) listenersLocked() []Listener {
	out := make([]Listener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

// resolve hands a RESPONSE payload to the waiting command, if any.
func (c *Client) resolve(requestID string, payload json.RawMessage) {
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if pending == nil {
		c.log.Debugw("response_without_command", "request_id", requestID)
		return
	}
	select {
	case pending <- payload:
	default:
		c.log.Debugw("response_duplicate", "request_id", requestID)
	}
}

// SendCommand writes cmd and waits for its RESPONSE. Only one command is in
// flight at a time; concurrent callers wait their turn, bounded by ctx.
// A response with status "error" is returned as *CommandError.
func (c *Client) SendCommand(ctx context.Context, cmd models.Command) error {
	select {
	case c.cmdSlot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.cmdSlot }()

	start := c.now()
	status := "failed"
	defer func() {
		metrics.CommandsTotal.WithLabelValues(cmd.Command, status).Inc()
	}()

	wire, err := codec.ToWire(cmd)
	if err != nil {
		return fmt.Errorf("encode %s: %w", cmd.Command, err)
	}

	respCh := make(chan json.RawMessage, 1)
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.pending = respCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
	}()

	log := c.log.With("command", cmd.Command, "request_id", cmd.RequestID, "cooker_id", cmd.Payload.ID)
	log.Infow("command_sent")
	if err := conn.WriteJSON(wire); err != nil {
		return fmt.Errorf("write %s: %w", cmd.Command, err)
	}

	timer := time.NewTimer(c.cfg.CommandTimeout)
	defer timer.Stop()

	select {
	case raw := <-respCh:
		metrics.CommandLatency.WithLabelValues(cmd.Command).Observe(c.now().Sub(start).Seconds())
		resp, err := decodeResponse(raw)
		if err != nil {
			return err
		}
		if err := responseError(cmd.Command, resp); err != nil {
			status = "error"
			log.Warnw("command_rejected", "error", err)
			return err
		}
		status = "ok"
		log.Infow("command_acknowledged")
		return nil
	case <-timer.C:
		status = "timeout"
		log.Warnw("command_timeout", "after", c.cfg.CommandTimeout.String())
		return fmt.Errorf("%w: %s after %s", ErrCommandTimeout, cmd.Command, c.cfg.CommandTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsCommandError reports whether err carries a gateway rejection.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}
