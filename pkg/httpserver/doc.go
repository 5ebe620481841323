// Package httpserver runs the API server with graceful shutdown.
package httpserver
