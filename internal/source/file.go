package source

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type fileSource struct {
	fs   afero.Fs
	path string
}

func NewFileSource(fs afero.Fs, path string) Source {
	return &fileSource{
		fs:   fs,
		path: path,
	}
}

func (s *fileSource) Load(_ context.Context) (*Payload, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
	}

	payload, err := Decode(data)
	if err != nil {
		return nil, err
	}

	log.Infof("📄 Read %d products from %s", len(payload.Products), s.path)
	return payload, nil
}
