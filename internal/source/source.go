// Package source reads whole line-oriented resources into memory.
package source

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/agentic-research/csvfeed/internal/logger"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ErrNotFound is returned (wrapped) when a resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Source produces the full text of a resource.
type Source interface {
	ReadAll(id string) (string, error)
}

// Func adapts a plain function to Source.
type Func func(id string) (string, error)

// ReadAll implements Source.
func (f Func) ReadAll(id string) (string, error) {
	return f(id)
}

// FS reads resources as files from a billy filesystem. Files ending in
// ".gz" or ".zst" are decompressed before being returned.
type FS struct {
	fs  billy.Filesystem
	log logger.Logger
}

// NewFS returns a Source rooted at fs. A nil log discards diagnostics.
func NewFS(fs billy.Filesystem, log logger.Logger) *FS {
	if log == nil {
		log = logger.NopLogger
	}
	return &FS{fs: fs, log: log}
}

// NewOS returns a Source reading from the local filesystem under root.
func NewOS(root string, log logger.Logger) *FS {
	return NewFS(osfs.New(root), log)
}

// Paths reads resources named by local file paths. Relative ids resolve
// against Root and may climb above it; absolute ids are used as given.
type Paths struct {
	Root string
	log  logger.Logger
}

// NewPaths returns a Source for local paths relative to root.
func NewPaths(root string, log logger.Logger) *Paths {
	if log == nil {
		log = logger.NopLogger
	}
	return &Paths{Root: root, log: log}
}

// ReadAll implements Source.
func (p *Paths) ReadAll(id string) (string, error) {
	path := id
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Root, path)
	}
	return NewOS(filepath.Dir(path), p.log).ReadAll(filepath.Base(path))
}

// ReadAll implements Source.
func (s *FS) ReadAll(id string) (string, error) {
	f, err := s.fs.Open(id)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(ErrNotFound, id)
		}
		return "", errors.Wrapf(err, "open %s", id)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.log.Warnf("close %s: %v", id, cerr)
		}
	}()

	r, closeFn, err := decompressor(id, f)
	if err != nil {
		return "", errors.Wrapf(err, "decompress %s", id)
	}
	defer func() { _ = closeFn() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", id)
	}
	s.log.Debugf("read %s: %d bytes", id, len(data))
	return string(data), nil
}

func decompressor(id string, r io.Reader) (io.Reader, func() error, error) {
	switch {
	case strings.HasSuffix(id, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case strings.HasSuffix(id, ".zst"):
		zr := zstd.NewReader(r)
		return zr, zr.Close, nil
	}
	return r, func() error { return nil }, nil
}
