package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrFileTooLarge is returned when a single file exceeds the per-file ceiling
var ErrFileTooLarge = errors.New("file too large")

// ErrBatchTooLarge is returned when files together exceed the cumulative ceiling
var ErrBatchTooLarge = errors.New("total size too large")
