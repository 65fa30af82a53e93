package handlers

import (
	"errors"
	"net/http"

	"anova_oven/internal/models"
	"anova_oven/internal/oven"
	"anova_oven/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"

	errListDevices = "failed to list devices"
	errGetDevice   = "failed to load device"
	errStartCook   = "failed to start cook"
	errStopCook    = "failed to stop cook"
	errNoState     = "no state reported yet"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// serviceError maps service and session errors onto HTTP statuses. Errors
// the caller can act on are passed through verbatim.
func (h *Handler) serviceError(c *gin.Context, fallback, logKey string, err error, kv ...interface{}) {
	var cmdErr *oven.CommandError
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidProgram):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &cmdErr):
		h.logAndJSONError(c, http.StatusBadGateway, cmdErr.Message, logKey, err, kv...)
	case errors.Is(err, oven.ErrCommandTimeout):
		h.logAndJSONError(c, http.StatusGatewayTimeout, err.Error(), logKey, err, kv...)
	case errors.Is(err, oven.ErrNotConnected):
		h.logAndJSONError(c, http.StatusServiceUnavailable, err.Error(), logKey, err, kv...)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, fallback, logKey, err, kv...)
	}
}

// StartCookRequest is an exported model for Swagger docs of the startCook payload.
type StartCookRequest struct {
	// Temperature unit of every temperature in the request. Allowed: C, F; defaults to anova.temperature_unit
	Unit string `json:"unit,omitempty" example:"C"`
	// Dry or wet bulb setpoint
	TargetTemperature float64 `json:"target_temperature" example:"180"`
	// Probe setpoint; excludes timer_seconds
	ProbeTemperature float64 `json:"probe_temperature,omitempty" example:"63"`
	// Cook duration; excludes probe_temperature
	TimerSeconds int `json:"timer_seconds,omitempty" example:"1200"`
	// Allowed: immediately, when_preheated, manually
	TimerMode string `json:"timer_mode,omitempty" example:"when_preheated"`
	SousVide  bool   `json:"sous_vide,omitempty"`
	// Relative humidity in percent
	TargetHumidity int `json:"target_humidity,omitempty" example:"100"`
}

// @Summary      Health check
// @Description  Reports the gateway session phase alongside the process status.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": statusOK}
	if h.services.Monitoring != nil {
		resp["connection"] = h.services.Monitoring.ConnectionPhase()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      List devices
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	devices, err := h.services.Monitoring.ListDevices(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListDevices, "devices_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(devices),
		"devices": devices,
	})
}

// @Summary      Get device
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Cooker id"
// @Success      200  {object}  models.Device
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	id := c.Param("id")
	d, err := h.services.Monitoring.GetDevice(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, errGetDevice, "device_get_failed", err, "cooker_id", id)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Get device state
// @Description  Latest state snapshot; 404 until the device has reported once.
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Cooker id"
// @Success      200  {object}  models.State
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id}/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	id := c.Param("id")
	d, err := h.services.Monitoring.GetDevice(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, errGetDevice, "device_get_state_failed", err, "cooker_id", id)
		return
	}
	if d.State == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoState})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cooker_id":  d.CookerID,
		"mode_label": models.ModeLabel(d.State.Mode),
		"state":      d.State,
	})
}

// @Summary      Start cook
// @Description  Builds a preheat/cook stage program and sends CMD_APO_START.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path   string            true  "Cooker id"
// @Param        body  body   StartCookRequest  true  "Cook parameters"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Failure      504   {object}  map[string]string
// @Router       /api/v1/devices/{id}/cook/start [post]
// @Security     BearerAuth
func (h *Handler) startCook(c *gin.Context) {
	var params models.CookParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.services.Cook.StartCook(c.Request.Context(), id, params); err != nil {
		h.serviceError(c, errStartCook, "cook_start_failed", err, "cooker_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStarted, "cooker_id": id})
}

// @Summary      Stop cook
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Cooker id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/devices/{id}/cook/stop [post]
// @Security     BearerAuth
func (h *Handler) stopCook(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Cook.StopCook(c.Request.Context(), id); err != nil {
		h.serviceError(c, errStopCook, "cook_stop_failed", err, "cooker_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStopped, "cooker_id": id})
}
