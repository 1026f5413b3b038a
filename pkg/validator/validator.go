package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var (
	v *validator.Validate
)

func init() {
	v = validator.New()
}

// Validate checks the `validate` tags of i. Field failures are reported one per
// wrapped error so callers can print them all.
func Validate(i interface{}) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}

	err := v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var out error
	for _, fieldErr := range fieldErrs {
		out = multierr.Append(out, fmt.Errorf("field %s failed on '%s' rule", fieldErr.Namespace(), fieldErr.Tag()))
	}

	return out
}
