package forecast

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is the sentinel for every refusal to train: callers
// match on it without caring which stage came up short.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError says which stage refused and by how much.
type InsufficientDataError struct {
	Stage string
	Need  int
	Have  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data at %s: need %d rows, have %d", e.Stage, e.Need, e.Have)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// ErrAllModelsFailed reports that every candidate model's fit failed. It is
// an insufficient-data condition: with enough well-conditioned history at
// least the linear model fits.
var ErrAllModelsFailed = fmt.Errorf("%w: every candidate model failed to fit", ErrInsufficientData)
