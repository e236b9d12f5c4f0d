// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for the closed enumerations of the result row schema.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Custom validators: resulttype, sampling, cutoffs
//   - Error translation to short human-readable messages
//   - Errors unwrap to models.ErrInvalidArgument
//
// Example usage:
//
//	type StabilityRequest struct {
//	    Sampling   string `validate:"omitempty,sampling"`
//	    EvaluateAt []int  `validate:"required,cutoffs"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    return fmt.Errorf("stability request: %w", err)
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/featstab/internal/models"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError represents a single field validation error.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "1" for "min=1").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the actual value that failed validation.
func (e *ValidationError) Value() interface{} {
	return e.value
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// StructError collects the field errors of one struct.
type StructError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (se *StructError) Errors() []ValidationError {
	return se.errors
}

// Error joins the field messages.
func (se *StructError) Error() string {
	if len(se.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(se.errors))
	for i := range se.errors {
		messages[i] = se.errors[i].Error()
	}
	return strings.Join(messages, "; ")
}

// Unwrap lets callers match validation failures with errors.Is.
func (se *StructError) Unwrap() error {
	return models.ErrInvalidArgument
}

// GetValidator returns the singleton validator instance.
// The validator is initialized once with custom validators and options.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("resulttype", validateResultType)
		_ = validate.RegisterValidation("sampling", validateSampling)
		_ = validate.RegisterValidation("cutoffs", validateCutoffs)
	})

	return validate
}

func validateResultType(fl validator.FieldLevel) bool {
	_, err := models.ParseResultType(fl.Field().String())
	return err == nil
}

func validateSampling(fl validator.FieldLevel) bool {
	_, err := models.ParseSampling(fl.Field().String())
	return err == nil
}

// validateCutoffs accepts a non-empty []int of positive, distinct values.
func validateCutoffs(fl validator.FieldLevel) bool {
	cutoffs, ok := fl.Field().Interface().([]int)
	if !ok || len(cutoffs) == 0 {
		return false
	}
	seen := make(map[int]struct{}, len(cutoffs))
	for _, k := range cutoffs {
		if k < 1 {
			return false
		}
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or a *StructError.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &StructError{
			errors: []ValidationError{
				{
					field:   "unknown",
					tag:     "unknown",
					message: err.Error(),
				},
			},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &StructError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":   "%s is required",
	"resulttype": "%s must be one of: subset rank weights",
	"sampling":   "%s must be one of: none bootstrap percent90",
	"cutoffs":    "%s must be a non-empty list of distinct positive cutoffs",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
