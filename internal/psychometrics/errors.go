package psychometrics

import (
	"errors"
	"fmt"
)

// Error kinds. A metric either returns a complete result or an error that
// matches exactly one of these with errors.Is.
var (
	ErrInsufficientItems     = errors.New("insufficient items")
	ErrNoData                = errors.New("no valid observations")
	ErrSingularMatrix        = errors.New("singular correlation matrix")
	ErrDegenerateCorrelation = errors.New("degenerate correlation")
	ErrMissingColumn         = errors.New("missing column")
	ErrInsufficientFactors   = errors.New("no factors to extract")
	ErrInvalidGroups         = errors.New("invalid grouping")
	ErrUnsupportedMethod     = errors.New("unsupported method")
)

// Fatal input conditions for the composition. These are never turned into
// omissions.
var (
	ErrNilDataset       = errors.New("dataset is nil")
	ErrNoDimensions     = errors.New("no dimensions to analyze")
	ErrInvalidDimension = errors.New("invalid dimension")
)

// MetricError carries the metric that failed and a detail message. It wraps
// one of the Err* kinds.
type MetricError struct {
	Kind   error
	Metric MetricKind
	Detail string
}

func (e *MetricError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Metric, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Metric, e.Kind, e.Detail)
}

func (e *MetricError) Unwrap() error { return e.Kind }

func metricErr(metric MetricKind, kind error, format string, args ...any) error {
	return &MetricError{Kind: kind, Metric: metric, Detail: fmt.Sprintf(format, args...)}
}

// ErrorKind returns a stable code for the kind of err, or "unknown".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientItems):
		return "insufficient_items"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrSingularMatrix):
		return "singular_matrix"
	case errors.Is(err, ErrDegenerateCorrelation):
		return "degenerate_correlation"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrInsufficientFactors):
		return "insufficient_factors"
	case errors.Is(err, ErrInvalidGroups):
		return "invalid_groups"
	case errors.Is(err, ErrUnsupportedMethod):
		return "unsupported_method"
	default:
		return "unknown"
	}
}
