package oven

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"anova_oven/internal/codec"
	"anova_oven/internal/models"
)

// Inbound frame commands.
const (
	EventState    = "EVENT_APO_STATE"
	EventWifiList = "EVENT_APO_WIFI_LIST"
	EventResponse = "RESPONSE"
)

type frame struct {
	Command   string          `json:"command"`
	RequestID string          `json:"requestId"`
	Payload   json.RawMessage `json:"payload"`
}

// The gateway's state document, camelCase on the wire.
type wireStatePayload struct {
	CookerID string     `json:"cookerId"`
	Type     string     `json:"type"`
	State    *wireState `json:"state"`
}

type wireState struct {
	State struct {
		Mode string `json:"mode"`
	} `json:"state"`
	SystemInfo struct {
		FirmwareVersion string `json:"firmwareVersion"`
	} `json:"systemInfo"`
	Nodes *wireNodes `json:"nodes"`
	Cook  *wireCook  `json:"cook"`
}

type wireCook struct {
	ActiveStageID  string          `json:"activeStageId"`
	SecondsElapsed int             `json:"secondsElapsed"`
	Stages         json.RawMessage `json:"stages"`
}

type wireTemperature struct {
	Celsius    *float64 `json:"celsius"`
	Fahrenheit *float64 `json:"fahrenheit"`
}

type wireBulb struct {
	Current    *wireTemperature `json:"current"`
	Setpoint   *wireTemperature `json:"setpoint"`
	Dosed      bool             `json:"dosed"`
	DoseFailed bool             `json:"doseFailed"`
}

type wireHeating struct {
	Watts int  `json:"watts"`
	On    bool `json:"on"`
}

type wireHumidity struct {
	Current  *float64 `json:"current"`
	Setpoint *float64 `json:"setpoint"`
}

type wireNodes struct {
	Cook struct {
		SecondsElapsed int `json:"secondsElapsed"`
	} `json:"cook"`
	Timer *struct {
		Mode    string `json:"mode"`
		Initial int    `json:"initial"`
		Current int    `json:"current"`
	} `json:"timer"`
	TemperatureBulbs *struct {
		Mode string   `json:"mode"`
		Dry  wireBulb `json:"dry"`
		Wet  wireBulb `json:"wet"`
	} `json:"temperatureBulbs"`
	TemperatureProbe *struct {
		Current  *wireTemperature `json:"current"`
		Setpoint *wireTemperature `json:"setpoint"`
	} `json:"temperatureProbe"`
	HeatingElements struct {
		Top    wireHeating `json:"top"`
		Bottom wireHeating `json:"bottom"`
		Rear   wireHeating `json:"rear"`
	} `json:"heatingElements"`
	SteamGenerators map[string]json.RawMessage `json:"steamGenerators"`
	Lamp            struct {
		On bool `json:"on"`
	} `json:"lamp"`
	Door struct {
		Closed bool `json:"closed"`
	} `json:"door"`
	WaterTank struct {
		Empty bool `json:"empty"`
	} `json:"waterTank"`
	Fan struct {
		Speed int `json:"speed"`
	} `json:"fan"`
}

// wifiListEntry is decoded through the codec, so tags are snake_case.
type wifiListEntry struct {
	CookerID string `json:"cooker_id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFrame, fmt.Sprintf(format, args...))
}

// decodeState turns an EVENT_APO_STATE payload into the cooker id and the
// decoded snapshot.
func decodeState(payload []byte, now time.Time) (string, *models.State, error) {
	var p wireStatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", nil, malformed("state payload: %v", err)
	}
	if p.CookerID == "" {
		return "", nil, malformed("state payload without cookerId")
	}
	if p.State == nil || p.State.Nodes == nil {
		return p.CookerID, nil, malformed("state payload without nodes")
	}

	nodes, err := decodeNodes(p.State.Nodes)
	if err != nil {
		return p.CookerID, nil, err
	}

	st := &models.State{
		Mode:            p.State.State.Mode,
		FirmwareVersion: p.State.SystemInfo.FirmwareVersion,
		Nodes:           nodes,
		RawStages:       "[]",
		ReceivedAt:      now,
	}
	if c := p.State.Cook; c != nil {
		st.Nodes.Cook.SecondsElapsed = c.SecondsElapsed
		if err := decodeStages(c, st); err != nil {
			return p.CookerID, nil, err
		}
	}
	return p.CookerID, st, nil
}

func decodeStages(c *wireCook, st *models.State) error {
	if len(c.Stages) == 0 || bytes.Equal(c.Stages, []byte("null")) {
		return nil
	}
	var ids []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(c.Stages, &ids); err != nil {
		return malformed("cook stages: %v", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, c.Stages); err != nil {
		return malformed("cook stages: %v", err)
	}
	st.RawStages = compact.String()
	st.Stages.Count = len(ids)
	if c.ActiveStageID == "" {
		return nil
	}
	for i, s := range ids {
		if s.ID == c.ActiveStageID {
			n := i + 1
			st.Stages.Active = &n
			break
		}
	}
	return nil
}

func decodeNodes(n *wireNodes) (models.Nodes, error) {
	var out models.Nodes
	out.Cook.SecondsElapsed = n.Cook.SecondsElapsed

	if n.TemperatureBulbs == nil {
		return out, malformed("missing temperatureBulbs")
	}
	var bulb wireBulb
	switch n.TemperatureBulbs.Mode {
	case models.BulbModeDry:
		bulb = n.TemperatureBulbs.Dry
	case models.BulbModeWet:
		bulb = n.TemperatureBulbs.Wet
	default:
		return out, malformed("unknown bulb mode %q", n.TemperatureBulbs.Mode)
	}
	out.TemperatureBulbs = models.TemperatureBulbs{
		Mode:              n.TemperatureBulbs.Mode,
		Temperature:       bulb.Current.toModel(),
		TargetTemperature: bulb.Setpoint.toModel(),
		Dosed:             n.TemperatureBulbs.Wet.Dosed,
		DoseFailed:        n.TemperatureBulbs.Wet.DoseFailed,
	}

	sg, err := decodeSteamGenerator(n.SteamGenerators)
	if err != nil {
		return out, err
	}
	out.SteamGenerator = sg

	if n.Timer != nil {
		out.Timer = &models.Timer{Mode: n.Timer.Mode, Initial: n.Timer.Initial, Current: n.Timer.Current}
	}
	if n.TemperatureProbe != nil {
		out.TemperatureProbe = &models.TemperatureProbe{
			Temperature:       n.TemperatureProbe.Current.toModel(),
			TargetTemperature: n.TemperatureProbe.Setpoint.toModel(),
		}
	}

	out.TopHeating = models.HeatingElement(n.HeatingElements.Top)
	out.BottomHeating = models.HeatingElement(n.HeatingElements.Bottom)
	out.RearHeating = models.HeatingElement(n.HeatingElements.Rear)
	out.LampOn = n.Lamp.On
	out.DoorClosed = n.Door.Closed
	out.WaterTankEmpty = n.WaterTank.Empty
	out.FanSpeed = n.Fan.Speed
	return out, nil
}

// decodeSteamGenerator reads the humidity entry matching the generator mode:
// "relativeHumidity" while idle, the camelCased mode name otherwise.
func decodeSteamGenerator(raw map[string]json.RawMessage) (models.SteamGenerator, error) {
	var sg models.SteamGenerator
	if raw == nil {
		return sg, malformed("missing steamGenerators")
	}
	if m, ok := raw["mode"]; ok {
		if err := json.Unmarshal(m, &sg.Mode); err != nil {
			return sg, malformed("steam generator mode: %v", err)
		}
	}
	key := codec.CamelCase(sg.Mode)
	if sg.Mode == "idle" {
		key = "relativeHumidity"
	}
	entry, ok := raw[key]
	if !ok {
		return sg, nil
	}
	var h wireHumidity
	if err := json.Unmarshal(entry, &h); err != nil {
		return sg, malformed("steam generator %s: %v", key, err)
	}
	sg.RelativeHumidity = h.Current
	if h.Setpoint != nil {
		sg.TargetHumidity = *h.Setpoint
	}
	return sg, nil
}

func (w *wireTemperature) toModel() *models.Temperature {
	switch {
	case w == nil:
		return nil
	case w.Celsius != nil:
		return models.NewTemperature(*w.Celsius)
	case w.Fahrenheit != nil:
		t := models.Fahrenheit(*w.Fahrenheit)
		return &t
	default:
		return nil
	}
}

// decodeDeviceList reads an EVENT_APO_WIFI_LIST payload. Entries without a
// cooker id are skipped.
func decodeDeviceList(payload []byte) ([]models.Device, error) {
	var entries []wifiListEntry
	if err := codec.DecodeWire(payload, &entries); err != nil {
		return nil, malformed("device list: %v", err)
	}
	devices := make([]models.Device, 0, len(entries))
	for _, e := range entries {
		if e.CookerID == "" {
			continue
		}
		devices = append(devices, models.Device{CookerID: e.CookerID, Type: e.Type})
	}
	return devices, nil
}

// decodeResponse returns the RESPONSE payload as a snake_case tree.
func decodeResponse(payload []byte) (map[string]any, error) {
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, nil
	}
	tree, err := codec.FromWire(payload)
	if err != nil {
		return nil, malformed("response payload: %v", err)
	}
	m, _ := tree.(map[string]any)
	return m, nil
}

// responseError maps a RESPONSE payload with status "error" to a CommandError.
func responseError(command string, resp map[string]any) error {
	if resp == nil {
		return nil
	}
	if status, _ := resp["status"].(string); status != "error" {
		return nil
	}
	msg, _ := resp["error"].(string)
	if msg == "" {
		msg = "Unknown error"
	}
	return &CommandError{Command: command, Message: msg}
}
