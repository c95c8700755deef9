package out

import "time"

type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// FileStater reads the identity fields of a song file.
type FileStater interface {
	Stat(path string) (FileInfo, error)
}
