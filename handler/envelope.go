package handler

import (
	"encoding/json"
	"net/http"
)

const DefaultMessage = "success"

// Envelope is the body of every API response.
type Envelope struct {
	Result  bool     `json:"result"`
	Data    any      `json:"data"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

type envelopeResponse struct {
	status int
	body   Envelope
}

func (e envelopeResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, e.status, e.body)
}

type EnvelopeOption func(*envelopeResponse)

func WithStatus(code int) EnvelopeOption {
	return func(e *envelopeResponse) { e.status = code }
}

func WithMessage(msg string) EnvelopeOption {
	return func(e *envelopeResponse) { e.body.Message = msg }
}

// OK renders a successful envelope carrying data with message "success".
func OK(data any, opts ...EnvelopeOption) Response {
	e := &envelopeResponse{
		status: http.StatusOK,
		body:   Envelope{Result: true, Data: data, Message: DefaultMessage},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Message renders a successful envelope with a custom message and no data.
func Message(msg string, opts ...EnvelopeOption) Response {
	return OK(nil, append([]EnvelopeOption{WithMessage(msg)}, opts...)...)
}

// Fail renders a failed envelope.
func Fail(status int, msg string, errs ...string) Response {
	return &envelopeResponse{
		status: status,
		body:   Envelope{Result: false, Message: msg, Errors: errs},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
