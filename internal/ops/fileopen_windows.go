//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/focusbrief/internal/errors"
)

// openFileNoFollowRead opens a file for reading.
// On Windows, O_NOFOLLOW is not available; ReadLocalFile rejects symlinks
// before we get here.
func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInvalidInput("file not found: " + path)
		}
		return nil, err
	}
	return f, nil
}
