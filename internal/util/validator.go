package util

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ApiError is one entry of the errors array in a failed response.
type ApiError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "strNotEmpty":
		return fmt.Sprintf("%s must not be empty or contain only whitespace characters", field)
	case "cmax":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eth_addr":
		return fmt.Sprintf("%s must be a valid wallet address", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}

	return fe.Error()
}

/*
GenerateErrorMessages turns a binding or service error into the errors array of a response.

Validation errors produce one entry per failing field, named the way the client sent it:

	[{"field": "studentAddress", "message": "studentAddress must be a valid wallet address"}]

Any other error becomes a single entry. field names it, "Unknown" when omitted.
*/
func GenerateErrorMessages(err error, field ...string) []ApiError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]ApiError, len(ve))
		for i, fe := range ve {
			out[i] = ApiError{Field: fe.Field(), Message: msgForTag(fe)}
		}
		return out
	}

	name := "Unknown"
	if len(field) > 0 && field[0] != "" {
		name = field[0]
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []ApiError{{Field: name, Message: "Record not found"}}
	}
	return []ApiError{{Field: name, Message: err.Error()}}
}

func trimmedString(fl validator.FieldLevel) (string, bool) {
	if fl.Field().Kind() != reflect.String {
		return "", false
	}
	return strings.TrimSpace(fl.Field().String()), true
}

// StrNotEmpty rejects strings that are blank after trimming.
// Usage: `binding:"strNotEmpty"`
func StrNotEmpty(fl validator.FieldLevel) bool {
	s, ok := trimmedString(fl)
	return ok && s != ""
}

// CustomMax bounds the trimmed length in characters, not bytes, so names with accents are not penalised.
// Usage: `binding:"cmax=200"`
func CustomMax(fl validator.FieldLevel) bool {
	s, ok := trimmedString(fl)
	if !ok {
		return false
	}

	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len([]rune(s)) <= limit
}

// fieldName reports the json or form name of a field, which is what clients see.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			continue
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// RegisterCustomValidations adds the custom tags to gin's validator engine.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	return RegisterValidations(v)
}

func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation("strNotEmpty", StrNotEmpty); err != nil {
		return err
	}
	return v.RegisterValidation("cmax", CustomMax)
}
