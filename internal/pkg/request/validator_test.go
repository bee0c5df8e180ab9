package request

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email string   `validate:"required,email"`
	Tags  []string `validate:"dive,required"`
}

func (signupRequest) GetMessages() map[string]string {
	return map[string]string{
		"Email.email":     "email must be valid",
		"Tags.*.required": "tags must not be empty",
	}
}

type plainRequest struct {
	Email string `validate:"required"`
}

func TestGetErrorUsesCustomMessage(t *testing.T) {
	validate := validator.New()

	req := signupRequest{Email: "nope"}
	appErr, ok := GetError(req, validate.Struct(req))
	require.True(t, ok)
	assert.Equal(t, "email must be valid", appErr.ErrorDesc())

	req = signupRequest{Email: "a@b.co", Tags: []string{"x", ""}}
	appErr, ok = GetError(&req, validate.Struct(req))
	require.True(t, ok)
	assert.Equal(t, "tags must not be empty", appErr.ErrorDesc())
}

func TestGetErrorWithoutMessage(t *testing.T) {
	validate := validator.New()

	req := signupRequest{}
	_, ok := GetError(req, validate.Struct(req))
	assert.False(t, ok, "Email.required has no custom message")

	plain := plainRequest{}
	_, ok = GetError(plain, validate.Struct(plain))
	assert.False(t, ok)

	_, ok = GetError(req, errors.New("unexpected EOF"))
	assert.False(t, ok)
}
