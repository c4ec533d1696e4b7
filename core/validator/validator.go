package validator

import (
	"date-booker/core/constants"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EchoValidator plugs go-playground/validator into echo's Context.Validate.
type EchoValidator struct {
	validate *validator.Validate
}

func New() *EchoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("datekey", dateKey)

	return &EchoValidator{validate: v}
}

func (v *EchoValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Details flattens validation errors into field/message pairs for responses.
func Details(err error) []FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "datekey":
		return "must be a date formatted YYYY-MM-DD"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "dive":
		return "is invalid"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func dateKey(fl validator.FieldLevel) bool {
	_, err := time.Parse(constants.DateKeyLayout, fl.Field().String())
	return err == nil
}
