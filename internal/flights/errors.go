package flights

import "errors"

// ErrInvalidArgument matches every argument validation failure.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	msgBadDates         = "Error: Bad dates provided"
	msgNRowsInteger     = "nrows must be an integer"
	msgNRowsNonNegative = "nrows must be a non-negative integer"
)

// InvalidArgumentError carries the user-facing message only. The underlying
// parse error is logged where it happens and never surfaced.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(message string) error {
	return &InvalidArgumentError{Message: message}
}
