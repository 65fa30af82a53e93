package handlers

import (
	"context"
	"net/http"
	"sync"

	"anova_oven/internal/models"
	"anova_oven/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockCook struct {
	startErr   error
	stopErr    error
	lastID     string
	lastParams models.CookParams
	starts     int
	stops      int
}

func (m *mockCook) StartCook(_ context.Context, cookerID string, p models.CookParams) error {
	m.starts++
	m.lastID = cookerID
	m.lastParams = p
	return m.startErr
}

func (m *mockCook) StopCook(_ context.Context, cookerID string) error {
	m.stops++
	m.lastID = cookerID
	return m.stopErr
}

// mockMonitoring serves a fixed device list and a test-controlled update feed.
type mockMonitoring struct {
	phase   string
	devices []models.Device
	err     error
	updates chan models.Device

	mu         sync.Mutex
	subscribed []string
	cancelled  int
}

func (m *mockMonitoring) ListDevices(context.Context) ([]models.Device, error) {
	return m.devices, m.err
}

func (m *mockMonitoring) GetDevice(_ context.Context, id string) (models.Device, error) {
	if m.err != nil {
		return models.Device{}, m.err
	}
	for _, d := range m.devices {
		if d.CookerID == id {
			return d, nil
		}
	}
	return models.Device{}, service.ErrDeviceNotFound
}

func (m *mockMonitoring) ConnectionPhase() string { return m.phase }

func (m *mockMonitoring) Subscribe(cookerID string) (<-chan models.Device, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = append(m.subscribed, cookerID)
	ch := m.updates
	if ch == nil {
		ch = make(chan models.Device)
	}
	return ch, func() {
		m.mu.Lock()
		m.cancelled++
		m.mu.Unlock()
	}
}

type mockEventLog struct {
	resp []models.OvenEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.OvenEvent, error) {
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
