// Package errkind defines the typed error variants raised across astrocore,
// per the error-handling design: every failure mode is a distinct, matchable
// kind carrying a short context string rather than an ad-hoc error string.
package errkind

import "fmt"

// Kind is a closed enumeration of the error variants astrocore can raise.
type Kind uint8

const (
	// Undefined means a value was never initialized.
	Undefined Kind = iota + 1
	// OutOfRange means offset+size exceeds a vector's length.
	OutOfRange
	// BrokerMismatch means a read subset is absent from the global broker.
	BrokerMismatch
	// SubsetNotRegistered means an unknown subset id was looked up.
	SubsetNotRegistered
	// WrongFrame means reframing was attempted where it is not supported.
	WrongFrame
	// Diverged means the RHS produced a non-finite output.
	Diverged
	// StepSizeUnderflow means the adaptive step controller stalled.
	StepSizeUnderflow
	// NoBracket means no sign change was found while bracketing a root.
	NoBracket
	// NonConvergent means an iteration budget was exhausted without convergence.
	NonConvergent
	// OutOfPropellant means a thruster's mass fell below its dry mass.
	OutOfPropellant
	// InvalidConfiguration means construction was given contradictory or empty inputs.
	InvalidConfiguration
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case OutOfRange:
		return "out-of-range"
	case BrokerMismatch:
		return "broker-mismatch"
	case SubsetNotRegistered:
		return "subset-not-registered"
	case WrongFrame:
		return "wrong-frame"
	case Diverged:
		return "diverged"
	case StepSizeUnderflow:
		return "step-size-underflow"
	case NoBracket:
		return "no-bracket"
	case NonConvergent:
		return "non-convergent"
	case OutOfPropellant:
		return "out-of-propellant"
	case InvalidConfiguration:
		return "invalid-configuration"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carried by every astrocore failure.
type Error struct {
	Kind    Kind
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

// Unwrap exposes the wrapped error, if any, for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, errkind.New(errkind.Diverged, "")) matches regardless of context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an *Error of the given kind with the given context.
func New(kind Kind, context string) *Error {
	return &Error{Kind: kind, Context: context}
}

// Wrap creates an *Error of the given kind, wrapping an underlying cause.
func Wrap(kind Kind, context string, err error) *Error {
	return &Error{Kind: kind, Context: context, Err: err}
}
