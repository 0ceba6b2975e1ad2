package discount

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// fileSource implements Source for code files on the local file system.
type fileSource struct {
	logger zerolog.Logger
}

// NewFileSource creates a new local file source for code imports.
func NewFileSource(logger zerolog.Logger) Source {
	return &fileSource{
		logger: logger.With().Str("component", "file-source").Logger(),
	}
}

// Open opens the code file at the given path.
func (s *fileSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	s.logger.Info().Str("file", path).Msg("opening code file")

	file, err := os.Open(path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to open code file")
		return nil, fmt.Errorf("failed to open code file %s: %w", path, err)
	}

	return file, nil
}
