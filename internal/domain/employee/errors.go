package employee

import "errors"

var (
	ErrNotFound = errors.New("employee not found")
	ErrConflict = errors.New("employee email or username already exists")
	ErrInUse    = errors.New("employee is referenced by payouts")
)
