package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.345.678-5", "12345678-5"},
		{"123456785", "12345678-5"},
		{" 11.111.111-1 ", "11111111-1"},
		{"10.000.013-k", "10000013-K"},
		{"7.654.321-6", "7654321-6"},
	}
	for _, tc := range cases {
		got, err := Validate(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestValidateRejects(t *testing.T) {
	_, err := Validate("12.345.678-9")
	assert.ErrorIs(t, err, ErrCheckDigit)

	for _, in := range []string{"", "-", "abc-1", "1234567890-1", "0-0", "12345678-55", "+1-4", "-1-9", "1-2-3", "+2-2"} {
		_, err := Validate(in)
		assert.ErrorIs(t, err, ErrFormat, in)
	}
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, "5", CheckDigit("12345678"))
	assert.Equal(t, "K", CheckDigit("10000013"))
	assert.Equal(t, "0", CheckDigit("14"))
}
