package request

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

var setupOnce sync.Once

// SetupValidator registers the order binding rules on gin's validator:
// JSON field names in errors, decimals validated by value, and the
// dateonly and decimal_gt0 tags.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

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

		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = v.RegisterValidation("dateonly", validateDateOnly)
		_ = v.RegisterValidation("decimal_gt0", validateDecimalGT0)
	})
}

func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// quantities are compared at their stored precision
func validateDecimalGT0(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Round(3).IsPositive()
}

// FieldErrors converts binding failures into API field errors. It returns
// nil when err is not a validation failure.
func FieldErrors(err error) []apperror.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make([]apperror.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, apperror.FieldError{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return out
}

// fieldPath drops the struct name from the namespace,
// e.g. CreateOrderRequest.ordered_items[0].quantity.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " entry"
		}
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "dateonly":
		return "must be a date in YYYY-MM-DD format"
	case "decimal_gt0":
		return "must be greater than zero"
	default:
		return "is invalid"
	}
}
