package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenKeyringFirst(t *testing.T) {
	keyring.MockInit()
	t.Setenv("APPLYSYNC_JAZZHR_TOKEN", "from-env")

	require.NoError(t, SetToken(JazzHR, " from-keyring "))
	tok, err := Token(JazzHR)
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", tok)

	require.NoError(t, DeleteToken(JazzHR))
	tok, err = Token(JazzHR)
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}

func TestTokenMissing(t *testing.T) {
	keyring.MockInit()
	t.Setenv("APPLYSYNC_STARTUPJOBS_TOKEN", "")

	_, err := Token(StartupJobs)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "APPLYSYNC_STARTUPJOBS_TOKEN")
}

func TestUnknownAndEmpty(t *testing.T) {
	keyring.MockInit()
	_, err := Token("github")
	assert.Error(t, err)
	assert.Error(t, SetToken(StartupJobs, "  "))
	assert.NoError(t, DeleteToken(StartupJobs), "deleting a missing token is fine")
}
