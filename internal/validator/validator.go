package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors is a list of field failures usable as an error value.
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Invalid builds a single-field failure.
func Invalid(field, code, message string) Errors {
	return Errors{{Field: field, Code: code, Message: message}}
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	Configure(v)
	return &Validator{validate: v}
}

// Configure applies the json tag naming and the custom rules to v. It is
// also used on gin's binding engine.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
}

const passwordSymbols = "#?!@$%^&*-"

// StrongPassword: at least 8 characters, one lowercase letter and one of #?!@$%^&*-.
func StrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var lower, symbol bool
	for _, r := range s {
		if unicode.IsLower(r) && r < unicode.MaxASCII {
			lower = true
		}
		if strings.ContainsRune(passwordSymbols, r) {
			symbol = true
		}
	}
	return lower && symbol
}

// Var checks a single value against tag, reporting failures under field.
func (v *Validator) Var(field string, value any, tag string) Errors {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Invalid(field, "INVALID", err.Error())
	}
	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ValidationError{Field: field, Code: strings.ToUpper(fe.Tag()), Message: message(field, fe)})
	}
	return out
}

// FromError converts validator failures into field errors. Other errors
// become a single entry without a field.
func FromError(err error) Errors {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Invalid("", "INVALID", err.Error())
	}
	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Code:    strings.ToUpper(fe.Tag()),
			Message: message(fe.Field(), fe),
		})
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "password":
		return fmt.Sprintf("%s must be at least 8 characters with a lowercase letter and one of %s", field, passwordSymbols)
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}
