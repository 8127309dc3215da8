package adapters

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"debforge/internal/core"
	"debforge/internal/ports"
	"debforge/internal/types"
)

const (
	arMagic      = "!<arch>\n"
	arHeaderSize = 60
)

// DebInspectorAdapter reads the control file embedded in a .deb archive.
type DebInspectorAdapter struct{}

func NewDebInspectorAdapter() DebInspectorAdapter {
	return DebInspectorAdapter{}
}

// Inspect opens the artifact, confirms it is a Debian binary package and
// returns the name and version it declares.
func (a DebInspectorAdapter) Inspect(path string) (types.BuildArtifact, error) {
	control, err := extractControl(path)
	if err != nil {
		return types.BuildArtifact{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s is not a valid Debian package", path)).
			WithCause(err)
	}
	paragraphs, err := core.ParseControl(control)
	if err != nil || len(paragraphs) == 0 {
		return types.BuildArtifact{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("control file of %s is malformed", path)).
			WithCause(err)
	}
	fields := paragraphs[0]
	artifact := types.BuildArtifact{Path: path}
	artifact.Package, _ = fields.Get("Package")
	artifact.Version, _ = fields.Get("Version")
	artifact.Architecture, _ = fields.Get("Architecture")
	if artifact.Package == "" || artifact.Version == "" {
		return types.BuildArtifact{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("control file of %s lacks Package or Version", path))
	}
	return artifact, nil
}

// extractControl walks the ar archive and returns the control file from
// the control.tar member.
func extractControl(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("read ar magic: %w", err)
	}
	if string(magic) != arMagic {
		return nil, fmt.Errorf("not an ar archive")
	}

	header := make([]byte, arHeaderSize)
	for {
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read ar header: %w", err)
		}
		// ar member names are space padded and may carry a trailing slash.
		name := strings.TrimRight(strings.TrimSpace(string(header[0:16])), "/")
		size, err := strconv.ParseInt(strings.TrimSpace(string(header[48:58])), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size for ar member %s: %w", name, err)
		}
		offset, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		if size < 0 || size > info.Size()-offset {
			return nil, fmt.Errorf("ar member %s has size %d beyond the end of the archive", name, size)
		}
		if strings.HasPrefix(name, "control.tar") {
			data := make([]byte, size)
			if _, err := io.ReadFull(f, data); err != nil {
				return nil, err
			}
			return extractControlFromTar(data, name)
		}
		// Members are aligned to 2-byte boundaries.
		if _, err := f.Seek(size+size%2, io.SeekCurrent); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("control.tar not found in package")
}

func extractControlFromTar(data []byte, name string) ([]byte, error) {
	var reader io.Reader = bytes.NewReader(data)
	switch {
	case strings.HasSuffix(name, ".gz"):
		gr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(name, ".xz"):
		xr, err := xz.NewReader(reader)
		if err != nil {
			return nil, err
		}
		reader = xr
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(reader)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		reader = zr
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == "./control" || header.Name == "control" {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("control file not found in %s", name)
}

var _ ports.ArtifactInspectorPort = DebInspectorAdapter{}
