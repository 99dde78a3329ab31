package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueSlugFreeBase(t *testing.T) {
	got, err := uniqueSlug("iphone-15-pro", func(s string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "iphone-15-pro", got)
}

func TestUniqueSlugDisambiguates(t *testing.T) {
	taken := map[string]bool{
		"iphone-15-pro":   true,
		"iphone-15-pro-2": true,
	}
	got, err := uniqueSlug("iphone-15-pro", func(s string) (bool, error) {
		return taken[s], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "iphone-15-pro-3", got)
}

func TestUniqueSlugGivesUpEventually(t *testing.T) {
	calls := 0
	var last string
	_, err := uniqueSlug("popular", func(s string) (bool, error) {
		calls++
		last = s
		return true, nil
	})
	assert.Error(t, err)
	assert.Equal(t, maxSlugAttempts, calls)
	assert.Equal(t, "popular-50", last)
}
