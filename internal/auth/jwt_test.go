package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	token, err := GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken("some-user")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}
