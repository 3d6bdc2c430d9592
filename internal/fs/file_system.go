package fs

import "io"

type FileSystem interface {
	Create(name string) (File, error)
	Open(name string) (File, error)
	ReadDir(name string) ([]DirEntry, error)
	Getwd() (string, error)
	Exists(name string) (bool, error)
}

type File interface {
	io.Reader
	io.Writer
	io.Closer
}

type DirEntry interface {
	Name() string
	IsDir() bool
}
