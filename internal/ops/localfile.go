package ops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/source"
)

// ReadLocalFile loads a file from disk into a file reference for the CLI
// and MCP callers. It checks:
// 1. Path traversal (.. sequences)
// 2. Symlink safety (the file itself must not be a symlink)
// 3. Size ceiling, before reading any content
func ReadLocalFile(path string, maxBytes int64) (source.Reference, error) {
	if strings.TrimSpace(path) == "" {
		return source.Reference{}, errors.NewInvalidInput("path is required")
	}
	if containsTraversal(path) {
		return source.Reference{}, errors.NewInvalidInput("path must not contain directory traversal (..)")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return source.Reference{}, errors.NewInvalidInput(fmt.Sprintf("invalid path: %v", err))
	}

	info, err := os.Lstat(absPath)
	if os.IsNotExist(err) {
		return source.Reference{}, errors.NewInvalidInput("file not found: " + path)
	}
	if err != nil {
		return source.Reference{}, errors.NewInternal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return source.Reference{}, errors.NewInvalidInput("path must not be a symlink")
	}
	if !info.Mode().IsRegular() {
		return source.Reference{}, errors.NewInvalidInput("path must be a regular file")
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return source.Reference{}, errors.NewPayloadTooLarge("file", maxBytes, info.Size())
	}

	f, err := openFileNoFollowRead(absPath)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return source.Reference{}, err
		}
		return source.Reference{}, errors.NewInternal(err)
	}
	defer f.Close()

	// Read one byte past the ceiling in case the file grew after Lstat.
	r := io.Reader(f)
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return source.Reference{}, errors.NewInternal(err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return source.Reference{}, errors.NewPayloadTooLarge("file", maxBytes, int64(len(data)))
	}

	name := filepath.Base(absPath)
	return source.Reference{
		Kind:     source.KindFile,
		Data:     data,
		FileName: name,
		MIMEType: source.DetectMIME(name, data, ""),
	}, nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
