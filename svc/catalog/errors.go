package catalog

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrRequesterNotFound = errors.New("requester not found")
	ErrInvalidQty        = errors.New("quantity must be positive")
	ErrVersionConflict   = errors.New("product version conflict")
)
