package fsaccess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"unicode/utf8"
)

var (
	// ErrNotText is returned by ReadTextFile when the file is not valid UTF-8.
	ErrNotText = errors.New("file is not valid utf-8 text")

	// ErrNotDir is returned by ListDir when path is not a directory.
	ErrNotDir = errors.New("not a directory")
)

// Accessor abstracts the filesystem operations served by the bridge.
type Accessor interface {
	// Exists reports whether path exists. A missing path is (false, nil).
	Exists(ctx context.Context, path string) (bool, error)

	// ReadTextFile returns the full contents of the file at path.
	ReadTextFile(ctx context.Context, path string) (string, error)

	// ListDir returns the names of the entries in the directory at path,
	// sorted in ascending byte order.
	ListDir(ctx context.Context, path string) ([]string, error)
}

// OS implements Accessor using the os package.
type OS struct{}

// NewOS creates an OS accessor.
func NewOS() *OS {
	return &OS{}
}

// Exists stats path and treats fs.ErrNotExist as a normal false.
func (o *OS) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %q: %w", path, err)
}

// ReadTextFile reads path and rejects contents that are not UTF-8.
func (o *OS) ReadTextFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read %q: %w", path, ErrNotText)
	}
	return string(data), nil
}

// ListDir opens path and collects entry names. Failing to open the directory
// is an error; an entry that cannot be read is logged and skipped.
func (o *OS) ListDir(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dir %q: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dir %q: %w", path, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("open dir %q: %w", path, ErrNotDir)
	}

	return readNames(ctx, path, f), nil
}

const (
	// dirBatch is how many entries one ReadDir call asks for.
	dirBatch = 128

	// maxDirErrors bounds consecutive reads that fail without returning any
	// entry, so a broken directory stream cannot spin forever.
	maxDirErrors = 3
)

type dirReader interface {
	ReadDir(n int) ([]fs.DirEntry, error)
}

// readNames drains r in batches so an error part-way through costs only the
// entries it affected. Names are sorted by their UTF-8 form, which is what
// reaches the wire.
func readNames(ctx context.Context, path string, r dirReader) []string {
	names := []string{}
	failures := 0
	for ctx.Err() == nil {
		batch, err := r.ReadDir(dirBatch)
		for _, e := range batch {
			if name := e.Name(); name != "" {
				names = append(names, wireName(name))
			}
		}
		if err == nil {
			failures = 0
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		slog.Warn("fsaccess: skipped unreadable entries", "path", path, "err", err)
		if len(batch) > 0 {
			failures = 0
			continue
		}
		if failures++; failures >= maxDirErrors {
			break
		}
	}
	sort.Strings(names)
	return names
}

// wireName replaces every invalid UTF-8 byte with U+FFFD, matching what
// encoding/json emits for the raw name.
func wireName(name string) string {
	if utf8.ValidString(name) {
		return name
	}
	return string([]rune(name))
}

var _ Accessor = (*OS)(nil)
