package domain

import "errors"

// ErrProductNotFound is returned when a product key is absent from the
// current report.
var ErrProductNotFound = errors.New("product not found")
