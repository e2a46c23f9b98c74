package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))
	t.Setenv("SKILLBUDDY_TEST_KEY", "from-env")

	secret, err := Load(Source{Name: "test key", Value: "inline", File: path, Env: "SKILLBUDDY_TEST_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", secret)
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("SKILLBUDDY_TEST_KEY", " from-env ")

	secret, err := Load(Source{Name: "test key", Env: "SKILLBUDDY_TEST_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", secret)

	secret, err = Load(Source{Name: "test key", Value: "inline", Env: "SKILLBUDDY_TEST_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "inline", secret)
}

func TestLoadErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, []byte("   "), 0o600))

	_, err := Load(Source{Name: "test key", File: empty})
	assert.ErrorContains(t, err, "is empty")

	_, err = Load(Source{Name: "test key", File: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "reading test key")

	t.Setenv("SKILLBUDDY_UNSET_KEY", "")
	_, err = Load(Source{Name: "test key", Env: "SKILLBUDDY_UNSET_KEY"})
	assert.ErrorContains(t, err, "set SKILLBUDDY_UNSET_KEY")

	_, err = Load(Source{})
	assert.EqualError(t, err, "secret is not configured")
}
