// Package rules holds the field validation and association policies
// applied before anything is written to the store.
package rules

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/models"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NormalizeTaxID trims surrounding whitespace from a CNPJ or CPF.
func NormalizeTaxID(id string) string {
	return strings.TrimSpace(id)
}

// ValidateCompany checks the field constraints of a company.
func ValidateCompany(c *models.Company) error {
	if c == nil {
		return fmt.Errorf("%w: company is required", e.ErrInvalidInput)
	}
	return describe(validate.Struct(c))
}

// ValidateSupplier checks the field constraints of a supplier and the
// documents required from individuals.
func ValidateSupplier(s *models.Supplier) error {
	if s == nil {
		return fmt.Errorf("%w: supplier is required", e.ErrInvalidInput)
	}
	if err := describe(validate.Struct(s)); err != nil {
		return err
	}
	return RequireIndividualDocuments(s)
}

// RequireIndividualDocuments fails when an individual supplier lacks a
// non-blank RG or a birth date. Organizations are never affected.
func RequireIndividualDocuments(s *models.Supplier) error {
	if !s.IsIndividual() {
		return nil
	}
	if s.RG == nil || strings.TrimSpace(*s.RG) == "" || s.BirthDate == nil {
		return e.ErrMissingIndividualDocs
	}
	return nil
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", e.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "len":
		return fmt.Sprintf("%s must have exactly %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s characters", fe.Field(), fe.Param())
	case "number":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
