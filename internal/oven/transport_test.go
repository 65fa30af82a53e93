package oven

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"anova_oven/internal/models"
)

// gatewayServer speaks just enough of the gateway protocol: it announces one
// device and answers every command with status ok.
func gatewayServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{Subprotocols: []string{"ANOVA_V2"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "access-1" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		if conn.Subprotocol() != "ANOVA_V2" {
			t.Errorf("subprotocol = %q", conn.Subprotocol())
		}
		conn.WriteJSON(map[string]any{
			"command": EventWifiList,
			"payload": []any{map[string]any{"cookerId": "real-1", "type": "oven_v2"}},
		})
		for {
			var cmd map[string]any
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			conn.WriteJSON(map[string]any{
				"command":   EventResponse,
				"requestId": cmd["requestId"],
				"payload":   map[string]any{"status": "ok"},
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebsocketGatewayRoundTrip(t *testing.T) {
	srv := gatewayServer(t)
	cfg := testConfig("http://127.0.0.1:1/token")
	cfg.GatewayURL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	cfg.DiscoveryTimeout = time.Second
	c := NewClient(cfg, testCreds)
	errc := startRun(c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	devices, err := c.GetDevices(ctx)
	if err != nil {
		t.Fatalf("GetDevices: %v", err)
	}
	if len(devices) != 1 || devices[0].CookerID != "real-1" {
		t.Fatalf("devices = %+v", devices)
	}
	if err := c.SendCommand(ctx, models.NewStopCommand("real-1")); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}

	c.Stop()
	if err := waitRun(t, errc); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
