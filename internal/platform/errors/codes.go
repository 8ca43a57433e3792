// Package errors provides structured domain errors for the missionboard client.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation marks caller input rejected before any side effect.
	CodeValidation Code = "VALIDATION_FAILED"

	// CodeTransport marks an unreachable upstream or a non-2xx response.
	CodeTransport Code = "TRANSPORT_FAILED"

	// CodeCacheCorrupt marks a persisted cache blob that could not be decoded.
	CodeCacheCorrupt Code = "CACHE_CORRUPT"
)

// String returns the code value.
func (c Code) String() string {
	return string(c)
}
