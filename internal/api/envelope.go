package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the value of the "v" field of every response body.
const EnvelopeVersion = 1

// Envelope is the shape of every JSON response body. Successful responses
// carry Data; failures carry either Error alone or Code, Message and Details.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps response bodies in the Envelope. It is installed
// as a huma transformer, so it sees handler outputs and errors alike.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if env, ok := v.(*Envelope); ok {
		return env, nil
	}

	code, _ := strconv.Atoi(status)
	if err, ok := v.(error); ok {
		return errorEnvelope(toAPIError(err)), nil
	}
	if code >= 400 {
		return &Envelope{Version: EnvelopeVersion, Success: false, Data: v}, nil
	}
	return &Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}

func errorEnvelope(err *APIError) *Envelope {
	if err.Code == "" {
		return &Envelope{Version: EnvelopeVersion, Success: false, Error: err.Message}
	}
	return &Envelope{
		Version: EnvelopeVersion,
		Success: false,
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
	}
}
