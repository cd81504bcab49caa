package model

import "errors"

// Sentinel values for the domain error taxonomy. They are defined here,
// in the leaf package, so that both the core services and the repository
// adapters can reference them without an import cycle; internal/core
// re-exports them under the same names.
var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrShiftNotFound    = errors.New("shift not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicate        = errors.New("resource already exists")
)
