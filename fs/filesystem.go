package fs

import (
	"errors"
	"os"
)

// ErrUnsupported is returned by providers for operations they cannot perform.
var ErrUnsupported = errors.New("operation not supported")

// Filesystem is the set of operations artifact storage needs from a provider.
// Missing paths are reported with errors matching fs.ErrNotExist.
type Filesystem interface {
	Create(name string) (File, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadFile(path string) ([]byte, error)
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
