package analytics

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ColumnEmployee = "Salarie"
	ColumnSubgroup = "Sous_groupe"
)

// RequiredColumns lists the identifier columns every input table must carry.
var RequiredColumns = []string{ColumnEmployee, ColumnSubgroup}

var (
	ErrConfiguration = errors.New("configuration error")
	ErrNoData        = errors.New("no data")
	ErrInvariant     = errors.New("invariant violated")
)

// ConfigurationError reports an unusable input table or parameter set.
// Nothing downstream runs once it is returned.
type ConfigurationError struct {
	Reason   string
	Required []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Required) > 0 {
		return fmt.Sprintf("%s: %s (required columns: %s)", ErrConfiguration, e.Reason, strings.Join(e.Required, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NoDataError is returned when a subgroup selection matches nothing. It ends
// the current selection only; another subgroup can still be analyzed.
type NoDataError struct {
	Subgroup string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("%s for subgroup %q", ErrNoData, e.Subgroup)
}

func (e *NoDataError) Is(target error) bool { return target == ErrNoData }

// InvariantError reports a caller precondition violation, such as an
// employee timeline that is not ordered by axis position.
type InvariantError struct {
	Employee string
	Reason   string
}

func (e *InvariantError) Error() string {
	if e.Employee == "" {
		return fmt.Sprintf("%s: %s", ErrInvariant, e.Reason)
	}
	return fmt.Sprintf("%s: employee %q: %s", ErrInvariant, e.Employee, e.Reason)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariant }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
