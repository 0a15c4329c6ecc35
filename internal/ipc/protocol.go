package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReloadConfiguration CommandType = "RELOAD_CONFIGURATION"
	CommandGetState            CommandType = "GET_STATE"
	CommandGetStatus           CommandType = "GET_STATUS"
	CommandShowBorder          CommandType = "SHOW_BORDER"
	CommandHideBorder          CommandType = "HIDE_BORDER"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ReloadPayload carries the configuration path for RELOAD_CONFIGURATION. An
// empty path reloads whatever file the daemon last loaded.
type ReloadPayload struct {
	ConfigPath string `json:"config_path,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	BorderEnabled bool   `json:"border_enabled"`
	MonitorCount  int    `json:"monitor_count"`
	ConfigPath    string `json:"config_path,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
