package core

import (
	"errors"

	"truetime.service/internal/core/model"
)

// Domain error taxonomy. Not-found and duplicate errors are surfaced to
// the caller and never retried; everything else is an infrastructure
// failure. The sentinels shared with the repository adapters live in
// core/model to avoid an import cycle and are re-exported here.
var (
	ErrEmployeeNotFound   = model.ErrEmployeeNotFound
	ErrDeviceNotFound     = model.ErrDeviceNotFound
	ErrShiftNotFound      = model.ErrShiftNotFound
	ErrUserNotFound       = model.ErrUserNotFound
	ErrDuplicate          = model.ErrDuplicate
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrDeviceNotFound) ||
		errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsDomainError reports whether err is a business-rule violation rather
// than an infrastructure failure. Ingestion drops payloads that hit a
// domain error instead of aborting the whole batch.
func IsDomainError(err error) bool {
	return IsNotFound(err) || errors.Is(err, ErrDuplicate)
}
