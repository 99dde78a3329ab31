package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("correct horse battery staple"))
	require.NotEmpty(t, p.Hash)
	assert.NotEqual(t, "correct horse battery staple", p.Hash)

	ok, err := p.Matches("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}
