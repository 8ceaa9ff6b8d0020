package validator

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-library-backend/pkg/apierror"
)

type sample struct {
	Email    string  `json:"email" validate:"required,email"`
	Count    *int    `json:"count" validate:"omitnil,min=1"`
	Code     *string `json:"code,omitempty" validate:"omitnil,min=1,max=4"`
	Internal string  `json:"-" validate:"omitempty,max=2"`
}

func TestValidatorStruct(t *testing.T) {
	t.Parallel()

	v := New()

	t.Run("valid struct returns nil", func(t *testing.T) {
		require.NoError(t, v.Struct(sample{Email: "a@b.io"}))
	})

	t.Run("reports fields by json name", func(t *testing.T) {
		zero := 0
		code := "toolong"
		err := v.Struct(sample{Email: "nope", Count: &zero, Code: &code})

		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
		require.Len(t, apiErr.Fields, 3)
		require.Equal(t, "email", apiErr.Fields[0].Field)
		require.Equal(t, "email must be a valid email address", apiErr.Fields[0].Message)
		require.Equal(t, "count", apiErr.Fields[1].Field)
		require.Equal(t, "count must be at least 1", apiErr.Fields[1].Message)
		require.Equal(t, "code", apiErr.Fields[2].Field)
		require.Equal(t, "code must be at most 4 characters", apiErr.Fields[2].Message)
	})

	t.Run("nil pointers are skipped", func(t *testing.T) {
		require.NoError(t, v.Struct(sample{Email: "x@y.io", Count: nil, Code: nil}))
	})

	t.Run("empty pointer string is still validated", func(t *testing.T) {
		empty := ""
		err := v.Struct(sample{Email: "x@y.io", Code: &empty})
		require.Error(t, err)
	})
}
