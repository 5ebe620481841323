// Package mongo opens MongoDB connections for the document storage backend.
package mongo
