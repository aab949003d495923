package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/agentic-research/csvfeed/internal/logger"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# header\n201,555,A\n\n202,556,B\n"

func TestFS_ReadAll(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "npanxx/east.csv", []byte(sample), 0o644))

	src := NewFS(fs, logger.NewLogfLogger(t))
	got, err := src.ReadAll("npanxx/east.csv")
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestFS_ReadAll_Compressed(t *testing.T) {
	fs := memfs.New()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, util.WriteFile(fs, "lrn.csv.gz", gz.Bytes(), 0o644))

	zst, err := zstd.Compress(nil, []byte(sample))
	require.NoError(t, err)
	require.NoError(t, util.WriteFile(fs, "lrn.csv.zst", zst, 0o644))

	src := NewFS(fs, nil)
	for _, name := range []string{"lrn.csv.gz", "lrn.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			got, err := src.ReadAll(name)
			require.NoError(t, err)
			assert.Equal(t, sample, got)
		})
	}
}

func TestFS_ReadAll_Missing(t *testing.T) {
	src := NewFS(memfs.New(), nil)
	_, err := src.ReadAll("nope.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestFS_ReadAll_CorruptGzip(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "bad.gz", []byte("not gzip"), 0o644))

	_, err := NewFS(fs, nil).ReadAll("bad.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decompress bad.gz")
}

func TestNewOS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, util.WriteFile(NewOS(dir, nil).fs, "spid.csv", []byte("1111,Carrier\n"), 0o644))

	got, err := NewOS(dir, nil).ReadAll("spid.csv")
	require.NoError(t, err)
	assert.Equal(t, "1111,Carrier\n", got)

	_, err = NewOS(filepath.Join(dir, "missing"), nil).ReadAll("spid.csv")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPaths_ReadAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "east"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "npanxx.csv"), []byte(sample), 0o644))

	zst, err := zstd.Compress(nil, []byte(sample))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lrn.csv.zst"), zst, 0o644))

	tests := []struct {
		name string
		root string
		id   string
	}{
		{"relative", dir, "npanxx.csv"},
		{"absolute ignores root", filepath.Join(dir, "east"), filepath.Join(dir, "npanxx.csv")},
		{"climbs above root", filepath.Join(dir, "east"), "../npanxx.csv"},
		{"compressed", dir, "lrn.csv.zst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPaths(tt.root, nil).ReadAll(tt.id)
			require.NoError(t, err)
			assert.Equal(t, sample, got)
		})
	}

	_, err = NewPaths(dir, nil).ReadAll(filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFunc(t *testing.T) {
	var seen string
	src := Func(func(id string) (string, error) {
		seen = id
		return "a,b\n", nil
	})
	got, err := src.ReadAll("mem://x")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", got)
	assert.Equal(t, "mem://x", seen)
}
