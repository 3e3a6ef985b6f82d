package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Wrapped
// with entity context, e.g. fmt.Errorf("order item: %w", ErrNotFound).
var ErrNotFound = errors.New("not found")
