package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
)

const categoryTag = "category"

type Validator struct {
	validate   *validator.Validate
	categories domain.Categories
}

func NewValidator(categories domain.Categories) (*Validator, error) {
	if len(categories) == 0 {
		categories = domain.DefaultCategories
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	err := validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		return categories.Contains(domain.Category(fl.Field().String()))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register category validation: %w", err)
	}

	return &Validator{validate: validate, categories: categories}, nil
}

func (v *Validator) Categories() domain.Categories {
	return v.categories
}

// Struct returns a *serviceerrors.ServiceError of KindValidation listing every
// failing field, or nil.
func (v *Validator) Struct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]serviceerrors.FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, serviceerrors.FieldError{
			Field: fieldErr.Field(),
			Error: v.message(fieldErr),
		})
	}
	return serviceerrors.NewValidationError(fields)
}

func (v *Validator) message(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot be empty", field)
		}
		return fmt.Sprintf("%s is required", field)
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, err.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case categoryTag:
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(v.categories.Strings(), ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
