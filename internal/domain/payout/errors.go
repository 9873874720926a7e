package payout

import "errors"

var (
	ErrUnknownEmployee = errors.New("payout references unknown employee")
	ErrNotFound        = errors.New("payout not found")
)
