package stats

import "errors"

var (
	// ErrInvalidRange indicates a window whose start is after its end.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidMetric indicates an unknown metric.
	ErrInvalidMetric = errors.New("invalid metric")
	// ErrInvalidRecord indicates a malformed daily record.
	ErrInvalidRecord = errors.New("invalid daily record")
)
