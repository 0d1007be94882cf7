package service

import (
	"github.com/origenhr/advance-api/internal/models"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

// EligibleAmount derives the advance ceiling for a salary: two thirds of the
// gross amount. The computation is side-effect-free and never rounds; callers
// round to two decimals at presentation time only. Salaries are validated as
// non-negative before they reach this point, so a negative input is a caller
// bug surfaced as a validation error.
func EligibleAmount(salary float64) (float64, error) {
	if salary < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "salary must be non-negative")
	}
	return models.EligibleFraction * salary, nil
}
