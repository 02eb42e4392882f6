package domain

import "errors"

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInternalError    = errors.New("internal error")
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name exceeds maximum length")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrCategoryRequired = errors.New("category is required")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrInvalidType      = errors.New("invalid record type")
	ErrInvalidActivity  = errors.New("invalid activity")
	ErrWorkerRequired   = errors.New("worker is required")
	ErrWorkerNotFound   = errors.New("worker not found")
	ErrNoWageEntries    = errors.New("no non-zero wage entries")
	ErrNegativeWage     = errors.New("wage components must not be negative")
	ErrTenantRequired   = errors.New("tenant is required")
	ErrStoreClosed      = errors.New("document store is closed")
	ErrNoData           = errors.New("nothing to export")
	ErrInvalidWindow    = errors.New("invalid report window")
	ErrInvalidFormat    = errors.New("unsupported export format")
	ErrArchiveDisabled  = errors.New("export archive is not configured")
)

// Validation constants
const (
	MaxCategoryLabelLength = 100
	MaxWorkerNameLength    = 100
	MaxNoteLength          = 500
	DefaultProperty        = "General"
	ManualEntryNote        = "Manual Entry"
)

var validationErrors = []error{
	ErrInvalidInput,
	ErrNameRequired,
	ErrNameTooLong,
	ErrInvalidAmount,
	ErrCategoryRequired,
	ErrInvalidDate,
	ErrInvalidType,
	ErrInvalidActivity,
	ErrWorkerRequired,
	ErrNoWageEntries,
	ErrNegativeWage,
	ErrInvalidWindow,
	ErrInvalidFormat,
}

// IsValidationError reports whether err is a caller input problem rather than
// a store failure
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
