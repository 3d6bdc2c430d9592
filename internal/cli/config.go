package cli

import "github.com/pkg/errors"

type Config struct {
	FileSystem FileSystem
}

func (c Config) Validate() error {
	if c.FileSystem == nil {
		return errors.New("missing file-system interface")
	}

	return nil
}
