package models

import "errors"

// ErrInvalidInput marks records or windows that violate basic ordering rules.
var ErrInvalidInput = errors.New("invalid input")
