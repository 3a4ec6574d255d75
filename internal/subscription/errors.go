package subscription

import "github.com/pkg/errors"

var (
	// ErrUnknownCategory is returned when a category is not in the catalog
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidPrice is returned for a price ceiling that is negative, NaN or infinite
	ErrInvalidPrice = errors.New("invalid max price")
	// ErrNoSuchSubscription is returned when removing or clearing something the user does not have
	ErrNoSuchSubscription = errors.New("no such subscription")
	// ErrIO marks persistence read and write failures
	ErrIO = errors.New("subscription storage I/O failure")
	// ErrCorruptState is returned when persisted state exists but cannot be decoded
	ErrCorruptState = errors.New("corrupt subscription state")
)

// IOError reports a failed persistence operation. It matches ErrIO under errors.Is and
// unwraps to the underlying cause.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports ErrIO as a match
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
