package client

import "encoding/json"

// Envelope is the account API's response wrapper, shared by success and
// error payloads. Successful auth operations carry the fresh credential
// token under meta.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
	Errors  []ErrorDetail   `json:"errors,omitempty"`
	Message string          `json:"message,omitempty"`
}

type Meta struct {
	Token string `json:"token,omitempty"`
}

type ErrorDetail struct {
	Detail string `json:"detail"`
}

// ErrorMessage extracts the human-readable message from the error
// envelope, preferring errors[0].detail, then the top-level message.
// Returns "" when the envelope carries neither.
func (e *Envelope) ErrorMessage() string {
	if e == nil {
		return ""
	}
	if len(e.Errors) > 0 && e.Errors[0].Detail != "" {
		return e.Errors[0].Detail
	}
	return e.Message
}
