// Package mongodb stores users and products as MongoDB documents. Every
// write that replaces a document is conditional on its version field.
package mongodb
