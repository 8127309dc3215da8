package adapters

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/renameio"

	"debforge/internal/ports"
	"debforge/internal/types"
)

// ResultStoreAdapter keeps one "<sha1>.txt" file per converted requirement
// set in Dir.
type ResultStoreAdapter struct {
	Dir string
}

func NewResultStoreAdapter(dir string) ResultStoreAdapter {
	return ResultStoreAdapter{Dir: dir}
}

// Fingerprint is the hex SHA-1 of the exact requirement specification bytes.
func Fingerprint(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Path returns the dependency file for a requirement specification.
func (a ResultStoreAdapter) Path(content []byte) string {
	return filepath.Join(a.Dir, Fingerprint(content)+".txt")
}

// Persist writes the joined results. Readers observe either the previous
// file or the complete new one.
func (a ResultStoreAdapter) Persist(content []byte, results []string) (string, error) {
	if strings.TrimSpace(a.Dir) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("dependency store directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create dependency store").
			WithCause(err)
	}
	path := a.Path(content)
	f, err := renameio.TempFile(a.Dir, path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create dependency file").
			WithCause(err)
	}
	defer f.Cleanup()
	if _, err := f.WriteString(strings.Join(results, ", ")); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write dependency file").
			WithCause(err)
	}
	if err := f.Chmod(0o644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set dependency file mode").
			WithCause(err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace dependency file").
			WithCause(err)
	}
	return path, nil
}

// Recall returns the persisted results. A requirement set that was never
// converted yields an error wrapping types.ErrCacheMiss.
func (a ResultStoreAdapter) Recall(content []byte) (string, error) {
	path := a.Path(content)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("could not recall dependencies: %s", types.ErrCacheMiss)).
				WithCause(types.ErrCacheMiss)
		}
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read dependency file").
			WithCause(err)
	}
	return string(data), nil
}

var _ ports.ResultStorePort = ResultStoreAdapter{}
