// Package memory keeps users and products in process memory. Writes are
// compare-and-swap on Version, matching the database backends, so it is safe
// to serve concurrent requests and to back tests.
package memory
