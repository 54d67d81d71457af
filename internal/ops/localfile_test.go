package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/source"
)

func TestReadLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("# Standup\nShip the release."), 0o600); err != nil {
		t.Fatal(err)
	}

	ref, err := ReadLocalFile(path, 1024)
	if err != nil {
		t.Fatalf("ReadLocalFile failed: %v", err)
	}
	if ref.Kind != source.KindFile || ref.FileName != "notes.md" {
		t.Errorf("ref = %+v", ref)
	}
	if string(ref.Data) != "# Standup\nShip the release." {
		t.Errorf("Data = %q", ref.Data)
	}
	if ref.MIMEType == "" {
		t.Error("MIMEType should be detected")
	}
}

func TestReadLocalFile_Rejections(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(big, make([]byte, 64), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code errors.ErrorCode
	}{
		{"empty", "", errors.ErrInvalidInput},
		{"traversal", "../etc/passwd", errors.ErrInvalidInput},
		{"mid-path traversal", "/tmp/../etc/passwd", errors.ErrInvalidInput},
		{"missing", filepath.Join(dir, "nope.txt"), errors.ErrInvalidInput},
		{"directory", dir, errors.ErrInvalidInput},
		{"too large", big, errors.ErrPayloadTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadLocalFile(tc.path, 16)
			if !errors.Is(err, tc.code) {
				t.Errorf("expected %s, got: %v", tc.code, err)
			}
		})
	}
}

func TestReadLocalFile_SymlinkRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	link := filepath.Join(dir, "link.txt")
	if err := os.WriteFile(target, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadLocalFile(link, 1024); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("symlink should be InvalidInput, got %v", err)
	}
}
