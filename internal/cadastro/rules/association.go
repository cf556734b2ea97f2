package rules

import (
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/models"
)

const (
	// RestrictedState is the state where individual suppliers must be adults.
	RestrictedState = "PR"
	// MinimumAge is the age, in completed years, required in RestrictedState.
	MinimumAge = 18
)

// AgeOn returns the number of completed years between birth and on.
func AgeOn(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}

// CheckLinkEligibility enforces the age policy for linking an individual
// supplier to a company located in RestrictedState. Suppliers without a
// known birth date are not evaluated.
func CheckLinkEligibility(company *models.Company, supplier *models.Supplier, now time.Time) error {
	if !strings.EqualFold(company.Estado, RestrictedState) {
		return nil
	}
	if !supplier.IsIndividual() || supplier.BirthDate == nil {
		return nil
	}
	if age := AgeOn(supplier.BirthDate.Time, now); age < MinimumAge {
		return fmt.Errorf("%w (age %d)", e.ErrUnderage, age)
	}
	return nil
}
