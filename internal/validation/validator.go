// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator instance. validator.Validate
// caches struct metadata internally, so one instance serves every request
// type.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes a single failed constraint on a struct field.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value interface{}
}

// Message renders the failed constraint as a human-readable sentence.
func (e FieldError) Message() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field, e.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field, e.Param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field, e.Param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field, e.Tag)
	}
}

// RequestValidationError aggregates every failed constraint of one
// ValidateStruct call.
type RequestValidationError struct {
	Fields []FieldError
}

// Error implements the error interface with one sentence per failed field.
func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}

	msgs := make([]string, len(ve.Fields))
	for i, fe := range ve.Fields {
		msgs[i] = fe.Message()
	}
	return strings.Join(msgs, "; ")
}

// APIError mirrors the api package's error envelope. Declared here rather
// than imported to keep the dependency one-directional (api imports
// validation, not the reverse).
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError renders the failure set as a VALIDATION_ERROR response.
// A single failed field keeps its detail flat; multiple failures are
// listed under a "fields" key.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.Fields) == 0 {
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
		}
	}

	if len(ve.Fields) == 1 {
		fe := ve.Fields[0]
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: fe.Message(),
			Details: map[string]interface{}{
				"field": fe.Field,
				"tag":   fe.Tag,
				"value": fe.Value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.Fields))
	msgs := make([]string, len(ve.Fields))
	for i, fe := range ve.Fields {
		fields[i] = map[string]interface{}{
			"field":   fe.Field,
			"tag":     fe.Tag,
			"message": fe.Message(),
		}
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message())
	}

	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(msgs, "; "),
		Details: map[string]interface{}{
			"fields": fields,
		},
	}
}

// ValidateStruct validates s against its `validate` tags and returns nil
// on success. Errors that are not field-level constraint failures (for
// example passing a non-struct) are reported as a single synthetic entry
// so callers have one error path.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{
			{Field: "request", Tag: "invalid"},
		}}
	}

	fields := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		}
	}

	return &RequestValidationError{Fields: fields}
}
