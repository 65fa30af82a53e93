package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"anova_oven/internal/models"
	"anova_oven/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 5 * time.Second
	maxInterval      = 60 * time.Second
	maxIntervalMilli = 60_000
)

// Envelope types.
const (
	wsTypeSnapshot = "snapshot" // full device list, sent on connect and every interval
	wsTypeState    = "state"    // one device update
	wsTypeError    = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins once the UI host is fixed
}

// @Summary      Device stream
// @Description  Upgrades to a WebSocket. Pushes a snapshot on connect, every state update as it arrives and a full snapshot every interval.
// @Tags         devices
// @Param        token        query  string  false  "API token when the Authorization header cannot be set"
// @Param        device       query  string  false  "Only stream this cooker id"
// @Param        interval     query  string  false  "Snapshot interval, e.g. 10s (max 60s)"
// @Param        interval_ms  query  int     false  "Snapshot interval in milliseconds"
// @Router       /ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	cookerID := c.Query("device")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	// Subscribe before the first snapshot so no update falls in between.
	updates, cancel := h.services.Monitoring.Subscribe(cookerID)
	defer cancel()

	ctx := c.Request.Context()
	if err := h.sendSnapshot(ctx, conn, cookerID); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err, "cooker_id", cookerID)
		}
		return
	}

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case d, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEnvelope(conn, wsEnvelope{Type: wsTypeState, Data: d}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendSnapshot(ctx, conn, cookerID); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// Helper: parseInterval reads ?interval=10s or ?interval_ms=10000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: sendSnapshot writes every known device, or just cookerID when set.
// An unknown device is reported to the client and ends the stream.
func (h *Handler) sendSnapshot(ctx context.Context, conn *websocket.Conn, cookerID string) error {
	var (
		devices []models.Device
		err     error
	)
	if cookerID == "" {
		devices, err = h.services.Monitoring.ListDevices(ctx)
	} else {
		var d models.Device
		d, err = h.services.Monitoring.GetDevice(ctx, cookerID)
		devices = []models.Device{d}
	}
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			_ = writeEnvelope(conn, wsEnvelope{Type: wsTypeError, Error: err.Error()})
		} else if h.log != nil {
			h.log.Errorw("ws_snapshot_failed", "err", err)
		}
		return err
	}
	return writeEnvelope(conn, wsEnvelope{Type: wsTypeSnapshot, Data: devices})
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
