package auth_test

import (
	"testing"

	"worklog-backend/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, auth.VerifyPassword(hash, "hunter22"))
	assert.False(t, auth.VerifyPassword(hash, "hunter23"))
	assert.False(t, auth.VerifyPassword("not-a-hash", "hunter22"))
}
