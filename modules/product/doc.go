// Package product serves the catalog endpoints under /product.
package product
