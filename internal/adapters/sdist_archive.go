package adapters

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// archiveKind classifies a source archive by extension. Unknown files
// return "".
func archiveKind(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return "tar.gz"
	case strings.HasSuffix(lower, ".tar.bz2"):
		return "tar.bz2"
	case strings.HasSuffix(lower, ".tar.xz"):
		return "tar.xz"
	case strings.HasSuffix(lower, ".tar"):
		return "tar"
	case strings.HasSuffix(lower, ".zip"):
		return "zip"
	default:
		return ""
	}
}

// extractArchive unpacks a source archive into destDir and returns the
// directory holding the package sources.
func extractArchive(path string, destDir string) (string, error) {
	var (
		root string
		err  error
	)
	switch archiveKind(path) {
	case "zip":
		root, err = extractZip(path, destDir)
	case "":
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported archive format: %s", filepath.Base(path)))
	default:
		root, err = extractTarball(path, destDir)
	}
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to unpack %s", filepath.Base(path))).
			WithCause(err)
	}
	if root == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("archive %s is empty", filepath.Base(path)))
	}
	return filepath.Join(destDir, root), nil
}

func extractTarball(path string, destDir string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	switch archiveKind(path) {
	case "tar.gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gr.Close()
		reader = gr
	case "tar.bz2":
		reader = bzip2.NewReader(f)
	case "tar.xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return "", err
		}
		reader = xr
	}

	var root string
	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		target, top, err := safeJoin(destDir, header.Name)
		if err != nil {
			return "", err
		}
		if top == "" {
			continue
		}
		if root == "" {
			root = top
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return "", err
			}
		}
	}
	return root, nil
}

func extractZip(path string, destDir string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var root string
	for _, file := range zr.File {
		target, top, err := safeJoin(destDir, file.Name)
		if err != nil {
			return "", err
		}
		if top == "" {
			continue
		}
		if root == "" {
			root = top
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		err = writeFile(target, rc, file.Mode().Perm())
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return root, nil
}

// safeJoin resolves an archive member below destDir and returns its first
// path component, which is empty for the archive root itself. Members
// escaping destDir are rejected.
func safeJoin(destDir string, name string) (string, string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(name, "./")))
	if cleaned == "." {
		return destDir, "", nil
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("archive member %q escapes destination", name)
	}
	top := strings.SplitN(cleaned, string(filepath.Separator), 2)[0]
	return filepath.Join(destDir, cleaned), top, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
