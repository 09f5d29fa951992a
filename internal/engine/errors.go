package engine

import (
	"errors"
	"fmt"
)

// CommandError is a command the engine could not dispatch: the op, the
// composition or an object it names is unknown, or its args are malformed.
// Edit failures raised by the timeline itself are timeline.EditError.
type CommandError struct {
	Code    CommandErrorCode
	Message string
	Op      string
	Details map[string]string
}

// CommandErrorCode categorizes dispatch errors.
type CommandErrorCode string

const (
	// ErrCodeUnknownOp indicates the op has no handler.
	ErrCodeUnknownOp CommandErrorCode = "UNKNOWN_OP"

	// ErrCodeUnknownObject indicates an object ID was never defined.
	ErrCodeUnknownObject CommandErrorCode = "UNKNOWN_OBJECT"

	// ErrCodeUnknownComposition indicates the composition does not exist.
	ErrCodeUnknownComposition CommandErrorCode = "UNKNOWN_COMPOSITION"

	// ErrCodeInvalidArgs indicates a required argument is missing or malformed.
	ErrCodeInvalidArgs CommandErrorCode = "INVALID_ARGS"

	// ErrCodeDuplicateObject indicates a definition reuses a taken object ID.
	ErrCodeDuplicateObject CommandErrorCode = "DUPLICATE_OBJECT"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownOp reports whether err is an UNKNOWN_OP error.
func IsUnknownOp(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == ErrCodeUnknownOp
}

// IsUnknownObject reports whether err is an UNKNOWN_OBJECT error.
func IsUnknownObject(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == ErrCodeUnknownObject
}

func newUnknownOp(op string) *CommandError {
	return &CommandError{Code: ErrCodeUnknownOp, Message: "no such operation", Op: op}
}

func newUnknownObject(op, id string) *CommandError {
	return &CommandError{
		Code:    ErrCodeUnknownObject,
		Message: fmt.Sprintf("object %q is not defined", id),
		Op:      op,
		Details: map[string]string{"object": id},
	}
}

func newUnknownComposition(op, name string) *CommandError {
	return &CommandError{
		Code:    ErrCodeUnknownComposition,
		Message: fmt.Sprintf("composition %q does not exist", name),
		Op:      op,
		Details: map[string]string{"composition": name},
	}
}

func newInvalidArgs(op, message string) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgs, Message: message, Op: op}
}
