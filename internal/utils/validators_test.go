package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"a@b.cn", true},
		{"not-an-email", false},
		{"missing-dot@example", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidEmail(tt.email), "IsValidEmail(%q)", tt.email)
	}
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("secret1"))
	assert.True(t, IsValidPassword("123456"))
	assert.False(t, IsValidPassword("12345"))
	assert.False(t, IsValidPassword(""))
}
