package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
)

func TestLoaderCachesSuccess(t *testing.T) {
	t.Setenv("TEST_SA_JSON", testDoc)
	l := NewLoader("TEST_SA_JSON")

	first, err := l.Load()
	require.NoError(t, err)

	// Changing the environment after the first load must not matter.
	t.Setenv("TEST_SA_JSON", "")
	second, err := l.Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoaderCachesFailure(t *testing.T) {
	t.Setenv("TEST_SA_JSON", "")
	l := NewLoader("TEST_SA_JSON")

	_, err := l.Load()
	require.Error(t, err)
	assert.Equal(t, apperr.CodeEmpty, apperr.CodeOf(err))

	// A later fix of the environment does not rescue this process: the
	// failure is cached so every request fails fast the same way.
	t.Setenv("TEST_SA_JSON", testDoc)
	_, err2 := l.Load()
	require.Error(t, err2)
	assert.Same(t, err, err2)
}

func TestLoaderDefaultEnvVar(t *testing.T) {
	t.Setenv(DefaultEnvVar, testDoc)
	cred, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, "test-project", cred.ProjectID)
}
