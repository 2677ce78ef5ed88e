package draw

import (
	"errors"
	"fmt"
)

// Reasons carried by ValidationError.
var (
	ErrInvalidRequest         = errors.New("invalid draw request")
	ErrActivityOrPrizeMissing = errors.New("activity or prize does not exist")
	ErrWinnerExceedsAmount    = errors.New("winner count exceeds prize amount")
	ErrWinnerNotEnrolled      = errors.New("winner is not enrolled in the activity")
	ErrWinnerAlreadyWon       = errors.New("winner already holds a prize in the activity")
	ErrActivityCompleted      = errors.New("activity already completed")
	ErrPrizeCompleted         = errors.New("prize already completed")
	ErrPrizeAlreadyDrawn      = errors.New("prize was drawn by a concurrent request")
)

// errInterrupted marks a prize whose status transition committed for this
// very request while its winning records never did.
var errInterrupted = errors.New("draw interrupted before its winning records were written")

// ValidationError rejects a draw request before any of its effects commit.
// Retrying it cannot succeed.
type ValidationError struct {
	Reason error
	Detail string
}

func invalid(reason error, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// Permanent tells the transport not to retry the message.
func (e *ValidationError) Permanent() bool { return true }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
