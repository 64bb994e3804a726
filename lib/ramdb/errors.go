package ramdb

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrChannelUnavailable is returned when the extension cannot be reached
	// or fails at the transport level.
	ErrChannelUnavailable = errors.New("ramdb: extension channel unavailable")

	// ErrDecodeFailure is matched by every *DecodeError.
	ErrDecodeFailure = errors.New("ramdb: inline result could not be decoded")

	// ErrEmptyResponse is returned when the extension answers with no elements.
	ErrEmptyResponse = errors.New("ramdb: empty extension response")
)

// maxErrorRaw is the number of bytes of the raw result quoted in a DecodeError
const maxErrorRaw = 64

// DecodeError reports an inline result that is not a valid literal.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	raw := e.Raw
	if len(raw) > maxErrorRaw {
		cut := maxErrorRaw
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}
		raw = raw[:cut] + "..."
	}
	return fmt.Sprintf("ramdb: cannot decode result %q: %v", raw, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecodeFailure) true for every DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecodeFailure }

// Unavailable wraps a transport error so it matches ErrChannelUnavailable.
// Errors that already match are returned unchanged.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrChannelUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrChannelUnavailable, err)
}
