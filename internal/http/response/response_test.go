package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	resp := OK()
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Nil(t, resp.Data)
}

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"count": 3})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"count": 3}, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something broke")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something broke", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Email    string  `validate:"required,email"`
		Password string  `validate:"required,min=6"`
		UserUID  string  `validate:"omitempty,uuid"`
		Amount   float64 `validate:"omitempty,gte=0"`
		Role     string  `validate:"omitempty,oneof=user admin"`
	}

	v := validator.New()

	tests := []struct {
		name    string
		in      payload
		wantMsg string
	}{
		{
			name:    "required field",
			in:      payload{Password: "secret123"},
			wantMsg: "field Email is a required field",
		},
		{
			name:    "invalid email",
			in:      payload{Email: "not-an-email", Password: "secret123"},
			wantMsg: "field Email must be a valid email",
		},
		{
			name:    "too short",
			in:      payload{Email: "a@b.com", Password: "123"},
			wantMsg: "field Password is too short",
		},
		{
			name:    "not a uuid",
			in:      payload{Email: "a@b.com", Password: "secret123", UserUID: "abc"},
			wantMsg: "field UserUID can contain only uuid",
		},
		{
			name:    "unsupported role",
			in:      payload{Email: "a@b.com", Password: "secret123", Role: "root"},
			wantMsg: "field Role has an unsupported value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)

			resp := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, StatusError, resp.Status)
			assert.Contains(t, resp.Error, tt.wantMsg)
		})
	}
}
