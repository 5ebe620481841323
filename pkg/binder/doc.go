// Package binder decodes HTTP requests into request structs. JSON decodes the
// body; Path and Query fill fields tagged `path:"..."` and `query:"..."`.
package binder
