package utils

import (
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)

	first, err := GenerateInviteCode()
	require.NoError(t, err)
	second, err := GenerateInviteCode()
	require.NoError(t, err)

	assert.Regexp(t, pattern, first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, first, NormalizeInviteCode("  "+strings.ToLower(first)+" "))
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Regexp(t, `^[0-9a-f]+$`, token)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"blank name", ValidateName("name", "   "), "name"},
		{"long name", ValidateName("family_name", strings.Repeat("a", 51)), "family_name"},
		{"short password", ValidatePassword("12345"), "password"},
		{"bad email", ValidateEmail("not-an-email"), "email"},
		{"email with display name", ValidateEmail("Ann Smith <ann@example.com>"), "email"},
		{"email in angle brackets", ValidateEmail("<ann@example.com>"), "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve ValidationError
			require.ErrorAs(t, tt.err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidationError(tt.err))
		})
	}

	assert.NoError(t, ValidateName("name", "Alice"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.NoError(t, ValidateEmail(""))
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.NoError(t, ValidateEmail(" Alice@Example.com "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Nil(t, NormalizeEmail("   "))
	normalized := NormalizeEmail(" Alice@Example.COM ")
	require.NotNil(t, normalized)
	assert.Equal(t, "alice@example.com", *normalized)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  PaginationParams
	}{
		{"", PaginationParams{Page: 1, Limit: 20, Offset: 0}},
		{"?page=3&limit=10", PaginationParams{Page: 3, Limit: 10, Offset: 20}},
		{"?page=0&limit=500", PaginationParams{Page: 1, Limit: 20, Offset: 0}},
		{"?page=abc", PaginationParams{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/items"+tt.query, nil)
			assert.Equal(t, tt.want, GetPaginationParams(c))
		})
	}
}
