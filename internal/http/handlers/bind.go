package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
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

func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large.", nil)
			return false
		}

		RespondBadRequest(ctx, "Invalid request body", parseBindError(err, out))

		return false
	}

	return true
}

// requireFields reports a 400 for fields a full (PUT) update must carry.
func requireFields(ctx *gin.Context, missing []string) bool {
	if len(missing) == 0 {
		return true
	}

	fields := make([]FieldError, 0, len(missing))
	for _, f := range missing {
		fields = append(fields, FieldError{Field: f, Rule: "required", Message: validationMessage("required", "")})
	}

	RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": fields})
	return false
}

func parseBindError(err error, out interface{}) interface{} {
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		rootType := baseStructType(out)
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   jsonFieldName(rootType, fieldError),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{
			"json": "invalid_json_syntax",
		}
	}

	// encoding/json already reports the path with JSON key names
	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{
				{
					Field:   field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
				},
			},
		}
	}

	return gin.H{"reason": err.Error()}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// jsonFieldName maps a validator error to the request's JSON key. Request
// payloads are flat, so the struct field name is enough to find the tag.
func jsonFieldName(rootType reflect.Type, fieldError validator.FieldError) string {
	if rootType == nil {
		return fieldError.Field()
	}

	sf, ok := rootType.FieldByName(fieldError.StructField())
	if !ok {
		return fieldError.Field()
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
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
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "uuid":
		return "must be a valid UUID"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
