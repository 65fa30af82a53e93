package models

import "github.com/google/uuid"

// Outbound command names.
const (
	CommandStart = "CMD_APO_START"
	CommandStop  = "CMD_APO_STOP"
)

// Command is the envelope of every outbound frame. Each command is answered
// by exactly one RESPONSE frame.
type Command struct {
	Command   string         `json:"command"`
	RequestID string         `json:"request_id"`
	Payload   CommandPayload `json:"payload"`
}

// CommandPayload echoes the command type and names the target device.
type CommandPayload struct {
	Payload any    `json:"payload"`
	Type    string `json:"type"`
	ID      string `json:"id"`
}

// StartPayload is the body of CMD_APO_START.
type StartPayload struct {
	CookID string  `json:"cook_id"`
	Stages []Stage `json:"stages"`
}

// NewCommand builds an envelope with a fresh request id.
func NewCommand(name, cookerID string, body any) Command {
	return Command{
		Command:   name,
		RequestID: uuid.NewString(),
		Payload: CommandPayload{
			Payload: body,
			Type:    name,
			ID:      cookerID,
		},
	}
}

// NewStartCommand wraps a cook program into CMD_APO_START.
func NewStartCommand(cookerID, platform string, stages []Stage) Command {
	return NewCommand(CommandStart, cookerID, StartPayload{
		CookID: NewPlatformID(platform),
		Stages: stages,
	})
}

// NewStopCommand builds CMD_APO_STOP, which carries no body.
func NewStopCommand(cookerID string) Command {
	return NewCommand(CommandStop, cookerID, nil)
}
