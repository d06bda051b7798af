package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnsupportedType is returned when the sniffed content type is not
// on the allow-list.
var ErrUnsupportedType = fmt.Errorf("unsupported file type")

// Supporting documents are restricted to formats a school office can
// actually review.
var allowedTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// Config controls where justification files land on disk.
type Config struct {
	Dir      string
	MaxBytes int64
}

// Store keeps uploaded justification documents on local disk, under
// unguessable names, in a directory that is never served statically.
// Reads go through Open only, so every download passes an access check
// first.
type Store struct {
	dir      string
	maxBytes int64
	logger   zerolog.Logger
}

// New prepares the storage directory and returns a Store.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("filestore directory must be provided")
	}

	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create filestore directory: %w", err)
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}

	return &Store{
		dir:      cfg.Dir,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "filestore").Logger(),
	}, nil
}

// Save sniffs the content type, enforces the allow-list and size cap,
// and writes the file under a uuid-derived name. It returns the stored
// name, which is what callers persist.
func (s *Store) Save(reader io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(reader, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("file exceeds %d bytes", s.maxBytes)
	}

	mime := mimetype.Detect(data)
	ext := ""
	for _, allowed := range allowedTypes {
		if mime.Is(allowed) {
			ext = mime.Extension()
			break
		}
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime.String())
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	s.logger.Info().Str("file", name).Str("mime", mime.String()).Msg("justification file stored")

	return name, nil
}

// Open returns a reader for a previously stored file together with its
// content type. The name must be one produced by Save; path traversal
// is rejected.
func (s *Store) Open(name string) (io.ReadCloser, string, error) {
	cleaned := filepath.Base(strings.TrimSpace(name))
	if cleaned == "" || cleaned != name {
		return nil, "", fmt.Errorf("invalid file name")
	}

	path := filepath.Join(s.dir, cleaned)
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		file.Close()
		return nil, "", err
	}

	return file, mime.String(), nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(name string) error {
	cleaned := filepath.Base(strings.TrimSpace(name))
	if cleaned == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, cleaned))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
