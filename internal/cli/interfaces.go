package cli

import (
	"github.com/ednfs/ednfs-cli/internal/fs"
)

type FileSystem interface {
	Open(name string) (fs.File, error)
	Create(name string) (fs.File, error)
	Exists(name string) (bool, error)
}
