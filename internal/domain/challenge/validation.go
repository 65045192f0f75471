package challenge

import (
	"strings"
	"time"
)

// ValidateCreateInput validates fields required to create a challenge.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.GroupID) == "" || strings.TrimSpace(req.CreatorID) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(req.Title) == "" {
		return ErrInvalidInput
	}
	if !req.Kind.Valid() || !req.Metric.Valid() {
		return ErrInvalidInput
	}
	if err := validateTarget(req.Kind, req.TargetValue); err != nil {
		return err
	}
	if req.StartDate.IsZero() {
		return ErrInvalidInput
	}
	if err := validateEnd(req.StartDate, req.EndDate); err != nil {
		return err
	}
	if req.RoundCadence != nil {
		if !req.RoundCadence.Valid() {
			return ErrInvalidCadence
		}
		if req.EndDate == nil {
			return ErrEndDateRequired
		}
	}
	return nil
}

func validateTarget(kind Kind, target int) error {
	if target < 0 {
		return ErrInvalidInput
	}
	if kind.UsesTarget() && target == 0 {
		return ErrInvalidInput
	}
	return nil
}

func validateEnd(start time.Time, end *time.Time) error {
	if end != nil && !end.After(start) {
		return ErrInvalidInput
	}
	return nil
}
