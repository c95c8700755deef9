package out

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	practiceout "keyloop/internal/modules/practice/port/out"
	apperrors "keyloop/internal/platform/errors"
)

type OSFileStater struct{}

func NewOSFileStater() practiceout.FileStater {
	return OSFileStater{}
}

func (OSFileStater) Stat(path string) (practiceout.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return practiceout.FileInfo{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
		}
		return practiceout.FileInfo{}, fmt.Errorf("stat song: %w", err)
	}
	if info.IsDir() {
		return practiceout.FileInfo{}, fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidInput, path)
	}
	return practiceout.FileInfo{Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()}, nil
}
