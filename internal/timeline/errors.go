package timeline

import (
	"errors"
	"fmt"
)

// EditError is returned by every editing operation that refuses a request.
//
// All edit errors are raised before the composition is mutated, so a caller
// receiving one can rely on the composition (and its linked brother) being
// unchanged.
type EditError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Object is the ID of the object the request referenced, if any.
	Object ID

	// Composition names the composition that rejected the request.
	Composition string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes edit errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a referenced object, layer or composition is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeOverlap indicates a complex effect or transition would intersect
	// an existing one of the same tier.
	ErrCodeOverlap ErrorCode = "OVERLAP_VIOLATION"

	// ErrCodeUnsupported indicates a request the layer model cannot express.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"

	// ErrCodeInvalidInterval indicates a negative start or non-positive duration.
	ErrCodeInvalidInterval ErrorCode = "INVALID_INTERVAL"

	// ErrCodeNotAdjacent indicates a transition between sources that do not follow each other.
	ErrCodeNotAdjacent ErrorCode = "NOT_ADJACENT"

	// ErrCodeAlreadyPresent indicates an object that is already placed in a composition.
	ErrCodeAlreadyPresent ErrorCode = "ALREADY_PRESENT"

	// ErrCodeBandExhausted indicates a tier has no priority value left in its band.
	ErrCodeBandExhausted ErrorCode = "BAND_EXHAUSTED"
)

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.Composition != "" && e.Object != "" {
		return fmt.Sprintf("%s: %s (composition=%s, object=%s)", e.Code, e.Message, e.Composition, e.Object)
	}
	if e.Object != "" {
		return fmt.Sprintf("%s: %s (object=%s)", e.Code, e.Message, e.Object)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the code of the first EditError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND edit error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsOverlap reports whether err is an OVERLAP_VIOLATION edit error.
func IsOverlap(err error) bool { return CodeOf(err) == ErrCodeOverlap }

// IsUnsupported reports whether err is an UNSUPPORTED edit error.
func IsUnsupported(err error) bool { return CodeOf(err) == ErrCodeUnsupported }

// IsInvalidInterval reports whether err is an INVALID_INTERVAL edit error.
func IsInvalidInterval(err error) bool { return CodeOf(err) == ErrCodeInvalidInterval }

func newNotFound(comp string, id ID, what string) *EditError {
	return &EditError{
		Code:        ErrCodeNotFound,
		Message:     what + " not found",
		Object:      id,
		Composition: comp,
	}
}

func newOverlap(comp string, id, other ID, tier string) *EditError {
	return &EditError{
		Code:        ErrCodeOverlap,
		Message:     tier + " overlaps an existing " + tier,
		Object:      id,
		Composition: comp,
		Details:     map[string]string{"overlaps": string(other)},
	}
}

func newUnsupported(comp, message string) *EditError {
	return &EditError{
		Code:        ErrCodeUnsupported,
		Message:     message,
		Composition: comp,
	}
}

// IsAlreadyPresent reports whether err is an ALREADY_PRESENT edit error.
func IsAlreadyPresent(err error) bool { return CodeOf(err) == ErrCodeAlreadyPresent }

func newNotAdjacent(comp string, id, from, to ID) *EditError {
	return &EditError{
		Code:        ErrCodeNotAdjacent,
		Message:     "transition sources must follow each other in the same layer",
		Object:      id,
		Composition: comp,
		Details:     map[string]string{"from": string(from), "to": string(to)},
	}
}

func newBandExhausted(comp string, id ID, tier string) *EditError {
	return &EditError{
		Code:        ErrCodeBandExhausted,
		Message:     "no " + tier + " priority left",
		Object:      id,
		Composition: comp,
	}
}
