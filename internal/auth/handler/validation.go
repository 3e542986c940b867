package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/blog-auth-service/internal/errors"
	"github.com/go-playground/validator/v10"
)

// Validator checks request shapes before they reach the service.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return service.CheckPasswordPolicy(fl.Field().String())
	})
	v.RegisterTagNameFunc(jsonFieldName)
	return &Validator{v: v}
}

// Struct returns an ErrValidation-wrapped error naming every failing field.
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", autherror.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", autherror.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "password":
		return fmt.Sprintf("%s must be at least 8 characters and contain upper and lower case letters, a digit and one of !@#$%%^&*", fe.Field())
	case "eqfield":
		return fmt.Sprintf("%s must match password", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
