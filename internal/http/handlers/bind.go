package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON binds and validates the request body, responding with structured
// field errors on failure. Returns false when the request was rejected.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondValidation(ctx, "Invalid request body", parseBindError(err))

		return false
	}

	return true
}

func parseBindError(err error) interface{} {
	// validator errors (struct binding tags)
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   jsonFieldName(fieldError.Field()),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}

		return gin.H{"fields": fields}
	}

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		return gin.H{
			"json":  "invalid_json_type",
			"field": typeError.Field,
			"fields": []FieldError{
				{
					Field:   typeError.Field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
				},
			},
		}
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}
}

// jsonFieldName lowercases the leading rune of a struct field name, which
// matches the camelCase json tags used across the request types.
func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}

	return strings.ToLower(structField[:1]) + structField[1:]
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}

		return "failed " + rule + " validation"
	}
}
