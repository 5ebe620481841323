// Package metrics exposes Prometheus collectors for the HTTP layer, the
// token authority and the fulfillment engine. All recording methods are
// safe on a nil *Metrics, which records nothing.
package metrics
