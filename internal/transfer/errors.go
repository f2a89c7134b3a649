package transfer

import (
	"errors"
	"fmt"
)

var (
	ErrBusy                = errors.New("another operation is in flight")
	ErrInvalidPhase        = errors.New("operation not valid in current phase")
	ErrUnknownMethod       = errors.New("unknown confirmation method")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// FailureKind classifies a workflow failure. Every asynchronous operation
// classifies its own errors before they reach the caller; the workflow
// never surfaces a raw transport fault.
type FailureKind int

const (
	FailureValidation FailureKind = iota
	FailureResolution
	FailureConnectivity
	FailureAuthorization
	FailureSubmission
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureResolution:
		return "resolution"
	case FailureConnectivity:
		return "connectivity"
	case FailureAuthorization:
		return "authorization"
	case FailureSubmission:
		return "submission"
	default:
		return "unknown"
	}
}

// Failure is the structured outcome handed to the presentation layer.
// Field names the offending input for field-level display ("amount",
// "tag", "bank", "account", "pin"); empty for screen-level failures.
type Failure struct {
	Kind    FailureKind
	Field   string
	Message string
}

func (f *Failure) Error() string {
	if f.Field != "" {
		return fmt.Sprintf("%s failure on %s: %s", f.Kind, f.Field, f.Message)
	}
	return fmt.Sprintf("%s failure: %s", f.Kind, f.Message)
}
