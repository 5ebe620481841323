// Package environment names the deployment profile the service runs under
// and carries it through request contexts and log records.
package environment
