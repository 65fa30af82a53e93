package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anova_oven/internal/models"
	"anova_oven/internal/service"
)

func getWithAuth(t *testing.T, s *service.Service, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := newTestRouter(s)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestLogsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	logs := &mockEventLog{resp: []models.OvenEvent{
		{EventID: "e1", OccurredAt: now, CookerID: "oven-1", Type: models.EventCookStarted},
		{EventID: "e2", OccurredAt: now.Add(time.Second), CookerID: "oven-1", Type: models.EventTargetReached},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: logs}

	if w := getWithAuth(t, s, "/api/v1/logs/?from=notatime"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid 'from', got %d", w.Code)
	}
	if w := getWithAuth(t, s, "/api/v1/logs/?from=2025-02-01&to=2025-01-01"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for reversed range, got %d", w.Code)
	}

	q := "/api/v1/logs/?from=" + now.Format(time.RFC3339) +
		"&to=" + now.Add(2*time.Second).Format(time.RFC3339) +
		"&type=cook_target_reached&cooker_id=oven-1"
	w := getWithAuth(t, s, q)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                `json:"count"`
		Events []models.OvenEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.last.Type != models.EventTargetReached || logs.last.CookerID != "oven-1" {
		t.Fatalf("filter = %+v", logs.last)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	s := &service.Service{Authorization: &mockAuth{}, EventLog: logs}

	if w := getWithAuth(t, s, "/api/v1/logs/?to=2025-08-31"); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	want := time.Date(2025, 8, 31, 23, 59, 59, 999999999, time.UTC)
	if !logs.last.To.Equal(want) {
		t.Fatalf("to = %v, want %v", logs.last.To, want)
	}
}
