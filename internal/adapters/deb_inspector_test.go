package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debforge/internal/types"
	"debforge/tests/testutil"
)

func TestDebInspectorReadsControl(t *testing.T) {
	path := testutil.WriteDeb(t, t.TempDir(), "python-alpha", "1.0-1", "all")

	artifact, err := NewDebInspectorAdapter().Inspect(path)
	require.NoError(t, err)
	want := types.BuildArtifact{Path: path, Package: "python-alpha", Version: "1.0-1", Architecture: "all"}
	if diff := cmp.Diff(want, artifact); diff != "" {
		t.Fatalf("unexpected artifact (-want +got):\n%s", diff)
	}
	assert.Equal(t, "python-alpha (=1.0-1)", artifact.Relation())
}

func TestDebInspectorUsesControlNotFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "renamed_9.9_all.deb")
	require.NoError(t, os.WriteFile(path, testutil.BuildDeb(t, testutil.DebControl("python-beta", "2.0", "amd64")), 0o644))

	artifact, err := NewDebInspectorAdapter().Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "python-beta", artifact.Package)
	assert.Equal(t, "2.0", artifact.Version)
}

func TestDebInspectorRejectsInvalidArchives(t *testing.T) {
	dir := t.TempDir()
	notAr := filepath.Join(dir, "bogus_1.0_all.deb")
	require.NoError(t, os.WriteFile(notAr, []byte("definitely not a deb"), 0o644))
	noVersion := filepath.Join(dir, "partial_1.0_all.deb")
	require.NoError(t, os.WriteFile(noVersion, testutil.BuildDeb(t, "Package: partial\n"), 0o644))

	for _, path := range []string{notAr, noVersion, filepath.Join(dir, "missing.deb")} {
		_, err := NewDebInspectorAdapter().Inspect(path)
		require.Error(t, err, path)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}

func TestDebInspectorRejectsBadMemberSizes(t *testing.T) {
	dir := t.TempDir()
	for name, size := range map[string]string{"negative": "-10", "oversized": "999999999"} {
		header := fmt.Sprintf("%-16s%-12s%-6s%-6s%-8s%-10s`\n", "control.tar.gz", "0", "0", "0", "100644", size)
		path := filepath.Join(dir, name+"_1.0_all.deb")
		require.NoError(t, os.WriteFile(path, []byte("!<arch>\n"+header+"tiny"), 0o644))

		_, err := NewDebInspectorAdapter().Inspect(path)
		require.Error(t, err, name)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		assert.Contains(t, err.Error(), "not a valid Debian package")
	}
}

func TestDebInspectorReadsFirstParagraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamma_3.0_all.deb")
	control := "Package: gamma\nVersion: 3.0\nArchitecture: all\nDescription: short\n long\n\nPackage: other\nVersion: 9.9\n"
	require.NoError(t, os.WriteFile(path, testutil.BuildDeb(t, control), 0o644))

	artifact, err := NewDebInspectorAdapter().Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "gamma", artifact.Package)
	assert.Equal(t, "3.0", artifact.Version)
}
