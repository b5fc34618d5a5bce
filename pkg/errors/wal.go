package errors

import stdErrors "errors"

// Sentinel errors for four of the five error kinds the write-ahead log
// contract exposes to callers. Each is wrapped as the cause of a richer
// StorageError or ValidationError below, so callers can match with
// errors.Is against the sentinel while still recovering structured context
// with errors.As. The fifth kind, Io, has no sentinel: I/O failures carry
// ErrorCodeIO (or a more specific storage code) and wrap the OS error.
var (
	ErrInvalidConfig  = stdErrors.New("nanolog: invalid config")
	ErrHeaderTooLarge = stdErrors.New("nanolog: header exceeds maximum size")
	ErrEntryNotFound  = stdErrors.New("nanolog: entry not found")
	ErrCorruptedData  = stdErrors.New("nanolog: corrupted data")
)

// NewInvalidConfigError reports a rejected open-time option.
func NewInvalidConfigError(field, rule string, provided any) *ValidationError {
	return NewValidationError(ErrInvalidConfig, ErrorCodeInvalidInput, ErrInvalidConfig.Error()).
		WithField(field).
		WithRule(rule).
		WithProvided(provided)
}

// NewHeaderTooLargeError reports a header that would exceed 65535 bytes.
func NewHeaderTooLargeError(headerLen int) *ValidationError {
	return NewValidationError(ErrHeaderTooLarge, ErrorCodeInvalidInput, ErrHeaderTooLarge.Error()).
		WithField("header").
		WithRule("max_length_65535").
		WithProvided(headerLen)
}

// NewEntryNotFoundError reports that no segment file matches an EntryRef.
func NewEntryNotFoundError(keyHash, sequence uint64) *StorageError {
	return NewStorageError(ErrEntryNotFound, ErrorCodeEntryNotFound, ErrEntryNotFound.Error()).
		WithKeyHash(keyHash).
		WithSequence(sequence)
}

// NewCorruptedDataError reports a missing signature at an expected framing offset.
func NewCorruptedDataError(cause error, path string, offset int) *StorageError {
	return NewStorageError(stdErrors.Join(ErrCorruptedData, cause), ErrorCodeCorruptedData, ErrCorruptedData.Error()).
		WithPath(path).
		WithOffset(offset)
}
