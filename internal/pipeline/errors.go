package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/rampsim/internal/model"
)

// Kind classifies a step failure.
type Kind int

const (
	KindDependencyUnavailable Kind = iota + 1
	KindExternalFetchFailure
	KindWriteFailure
	KindStateInconsistency
)

func (k Kind) String() string {
	switch k {
	case KindDependencyUnavailable:
		return "DependencyUnavailable"
	case KindExternalFetchFailure:
		return "ExternalFetchFailure"
	case KindWriteFailure:
		return "WriteFailure"
	case KindStateInconsistency:
		return "StateInconsistency"
	default:
		return "Unknown"
	}
}

// Sentinels matched by errors.Is against a *StepError.
var (
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrExternalFetchFailure  = errors.New("external fetch failure")
	ErrWriteFailure          = errors.New("write failure")
	ErrStateInconsistency    = errors.New("state inconsistency")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDependencyUnavailable:
		return ErrDependencyUnavailable
	case KindExternalFetchFailure:
		return ErrExternalFetchFailure
	case KindWriteFailure:
		return ErrWriteFailure
	case KindStateInconsistency:
		return ErrStateInconsistency
	default:
		return nil
	}
}

// StepError reports which step failed and why.
type StepError struct {
	Kind  Kind
	Step  string
	Table model.Table
	Date  time.Time // Incremental steps only
	Err   error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %s (%s): %s", e.Step, e.Table, e.Kind)
	if !e.Date.IsZero() {
		msg += " for " + e.Date.Format(time.DateOnly)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *StepError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of a step failure anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

func stepErr(kind Kind, step Step, date time.Time, err error) *StepError {
	return &StepError{
		Kind:  kind,
		Step:  step.Name,
		Table: step.Table,
		Date:  date,
		Err:   err,
	}
}
