// Package storage keeps uploaded files on local disk: short-lived scratch
// copies for processing and permanent uploads under one root.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"horse.fit/pdfdesk/internal/globaltime"
)

var (
	ErrInvalidFilename = errors.New("invalid filename")
	ErrOutsideRoot     = errors.New("path escapes storage root")
)

// Store owns the upload root and the scratch directory.
type Store struct {
	root        string
	scratchRoot string
}

// StoredFile describes one permanently stored upload.
type StoredFile struct {
	Name       string
	Path       string
	Size       int64
	SHA256     string
	StoredAt   time.Time
	Overwrote  bool
	SourceName string
}

// NewStore creates root and scratchRoot when they are missing.
func NewStore(root, scratchRoot string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	root = filepath.Clean(strings.TrimSpace(root))
	scratchRoot = strings.TrimSpace(scratchRoot)
	if scratchRoot == "" {
		scratchRoot = filepath.Join(root, ".scratch")
	}
	scratchRoot = filepath.Clean(scratchRoot)

	for _, dir := range []string{root, scratchRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return &Store{root: root, scratchRoot: scratchRoot}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) ScratchRoot() string {
	return s.scratchRoot
}

// Scratch is a uniquely named temporary copy of one upload.
type Scratch struct {
	Path string
	Size int64

	once sync.Once
	err  error
}

// Release removes the scratch file. It runs at most once; later calls return
// the first result. A file that is already gone is not an error.
func (f *Scratch) Release() error {
	if f == nil {
		return nil
	}
	f.once.Do(func() {
		if f.Path == "" {
			return
		}
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.err = fmt.Errorf("remove scratch file %s: %w", f.Path, err)
		}
	})
	return f.err
}

// CreateScratch copies r into a new "*.pdf" file under the scratch root.
// On failure nothing is left on disk.
func (s *Store) CreateScratch(r io.Reader) (*Scratch, error) {
	if r == nil {
		return nil, fmt.Errorf("scratch source is nil")
	}
	tmp, err := os.CreateTemp(s.scratchRoot, "upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	scratch := &Scratch{Path: tmp.Name()}

	size, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = scratch.Release()
		if copyErr != nil {
			return nil, fmt.Errorf("write scratch file: %w", copyErr)
		}
		return nil, fmt.Errorf("close scratch file: %w", closeErr)
	}
	scratch.Size = size
	return scratch, nil
}

// SaveUpload stores r under the sanitized form of filename, replacing any
// previous upload with the same name. The write goes through a temporary
// file in the same directory so readers never see a partial upload.
func (s *Store) SaveUpload(filename string, r io.Reader) (StoredFile, error) {
	name := SecureFilename(filename)
	if name == "" {
		return StoredFile{}, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	target, err := s.resolve(name)
	if err != nil {
		return StoredFile{}, err
	}

	_, statErr := os.Stat(target)
	overwrote := statErr == nil

	tmp, err := os.CreateTemp(s.root, ".incoming-*")
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return StoredFile{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("close upload file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("chmod upload file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("move upload into place: %w", err)
	}

	return StoredFile{
		Name:       name,
		Path:       target,
		Size:       size,
		SHA256:     hex.EncodeToString(hasher.Sum(nil)),
		StoredAt:   globaltime.UTC(),
		Overwrote:  overwrote,
		SourceName: filename,
	}, nil
}

// resolve joins name under the root and refuses anything that lands outside it.
func (s *Store) resolve(name string) (string, error) {
	target := filepath.Join(s.root, name)
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}
	return target, nil
}
