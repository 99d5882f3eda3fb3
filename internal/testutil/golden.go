package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv, when set, makes Golden rewrite files instead of comparing.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

// Golden compares got against testdata/<name>.golden in the calling
// package's directory. Line endings are normalized before comparing so the
// files survive a CRLF checkout.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll("testdata", 0755))
		require.NoError(t, os.WriteFile(path, got, 0644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "read golden file %s; got:\n%s", path, got)

	assert.Equal(t, normalizeEOL(string(want)), normalizeEOL(string(got)), "output mismatch for %s", name)
}

func normalizeEOL(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
