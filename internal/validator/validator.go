// Package validator wraps go-playground/validator with the business rules
// of an exam session: room geometry, version codes, the exam time window
// and proctor roles.
package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/campus-ops/exam-session-service/internal/models"
	"github.com/campus-ops/exam-session-service/internal/session"
)

// ValidationError describes one failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
	Rule    string `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator validates request payloads and loaded exam configuration.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerRules()
	return v
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("proctor_role", func(fl validator.FieldLevel) bool {
		return models.ProctorRole(fl.Field().String()).Valid()
	})
}

// Validate runs struct-tag validation and converts failures.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs ValidationErrors
	for _, fe := range err.(validator.ValidationErrors) {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

// ValidateExamMeta checks the loaded preamble before a session is built from
// it. The loader treats any failure here as fatal.
func (v *Validator) ValidateExamMeta(meta session.Meta) ValidationErrors {
	var errs ValidationErrors

	if meta.Capacity <= 0 {
		errs = append(errs, ValidationError{Field: "capacity", Message: "must be positive", Value: meta.Capacity, Rule: "business_logic"})
	}
	if meta.MaxRow <= 0 || meta.MaxCol <= 0 {
		errs = append(errs, ValidationError{
			Field:   "seat_grid",
			Message: "room dimensions must be positive",
			Value:   fmt.Sprintf("%dx%d", meta.MaxRow, meta.MaxCol),
			Rule:    "business_logic",
		})
	}
	if meta.NumVersions <= 0 {
		errs = append(errs, ValidationError{Field: "num_versions", Message: "must be positive", Value: meta.NumVersions, Rule: "business_logic"})
	}
	if len(meta.VersionCodes) < meta.NumVersions {
		errs = append(errs, ValidationError{
			Field:   "version_codes",
			Message: fmt.Sprintf("need at least %d codes, got %d", meta.NumVersions, len(meta.VersionCodes)),
			Value:   meta.VersionCodes,
			Rule:    "business_logic",
		})
	}
	if !meta.EndTime.After(meta.StartTime) {
		errs = append(errs, ValidationError{Field: "end_time", Message: "must be after start time", Rule: "business_logic"})
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "proctor_role":
		return "must be TA or Course_Instructor"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
	}
}
