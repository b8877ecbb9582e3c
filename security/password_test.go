package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hashed, err := HashPassword("Sup3r$ecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r$ecret", hashed)

	assert.True(t, VerifyPassword("Sup3r$ecret", hashed))
	assert.False(t, VerifyPassword("wrong", hashed))
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Sup3r$ecret", true},
		{"Aa1!aaaa", true},
		{"short1!", false},     // under 8 chars
		{"alllower1!", false},  // no uppercase
		{"ALLUPPER1!", false},  // no lowercase
		{"NoDigits!!", false},  // no digit
		{"NoSpecial11", false}, // no special character
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrongPassword(tt.password), "password %q", tt.password)
	}
}
