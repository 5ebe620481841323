// Package handler turns typed request handlers into http.HandlerFunc values
// and renders every outcome as the JSON envelope
// {"result", "data", "message", "errors"}.
package handler
