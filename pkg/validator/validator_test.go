package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
	"go.uber.org/multierr"
)

func TestSimplestr(t *testing.T) {
	testCases := []struct {
		Str string `validate:"required"`
		Err bool
	}{
		{
			Str: "",
			Err: true,
		},
		{
			Str: "abc",
			Err: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Str, func(t *testing.T) {
			err := validator.Validate(testCase)
			if !testCase.Err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestValidate_AllFields(t *testing.T) {
	type sender struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}

	err := validator.Validate(sender{Email: "not-an-email"})
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "sender.Name failed on 'required' rule")
	assert.Contains(t, err.Error(), "sender.Email failed on 'email' rule")
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, validator.Validate(nil))
}
