package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debforge/internal/types"
)

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", Fingerprint(nil))
	assert.Equal(t, Fingerprint([]byte("alpha==1.0")), Fingerprint([]byte("alpha==1.0")))
	assert.NotEqual(t, Fingerprint([]byte("alpha==1.0")), Fingerprint([]byte("alpha==1.0\n")))
}

func TestResultStorePersistRecall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store := NewResultStoreAdapter(dir)
	content := []byte("alpha==1.0")

	path, err := store.Persist(content, []string{"native-alpha (=1.0)", "native-beta (=2.0)"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, Fingerprint(content)+".txt"), path)

	deps, err := store.Recall(content)
	require.NoError(t, err)
	assert.Equal(t, "native-alpha (=1.0), native-beta (=2.0)", deps)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestResultStorePersistReplaces(t *testing.T) {
	store := NewResultStoreAdapter(t.TempDir())
	content := []byte("alpha")
	_, err := store.Persist(content, []string{"old (=1)"})
	require.NoError(t, err)
	_, err = store.Persist(content, []string{"new (=2)"})
	require.NoError(t, err)

	deps, err := store.Recall(content)
	require.NoError(t, err)
	assert.Equal(t, "new (=2)", deps)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files may be left behind")
}

func TestResultStorePersistEmptyResults(t *testing.T) {
	store := NewResultStoreAdapter(t.TempDir())
	_, err := store.Persist([]byte("setuptools"), nil)
	require.NoError(t, err)
	deps, err := store.Recall([]byte("setuptools"))
	require.NoError(t, err)
	assert.Equal(t, "", deps)
}

func TestResultStoreRecallMiss(t *testing.T) {
	store := NewResultStoreAdapter(t.TempDir())
	_, err := store.Recall([]byte("never converted"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), types.ErrCacheMiss.Error())
}

func TestResultStoreRequiresDirectory(t *testing.T) {
	_, err := NewResultStoreAdapter("").Persist([]byte("alpha"), nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
