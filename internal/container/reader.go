package container

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"class-remapper/internal/common"
)

// Kind classifies a container entry.
type Kind int

const (
	KindResource Kind = iota
	KindDirectory
	KindClass
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindDirectory:
		return "directory"
	case KindClass:
		return "class"
	default:
		return common.UnknownStr
	}
}

// Classify returns the kind of an entry name.
func Classify(name string) Kind {
	switch {
	case strings.HasSuffix(name, "/"):
		return KindDirectory
	case strings.HasSuffix(name, common.ClassSuffix):
		if _, ok := common.ClassEntryName(name); ok {
			return KindClass
		}

		return KindResource
	default:
		return KindResource
	}
}

// Entry is one entry of an open container.
type Entry struct {
	Name string
	Kind Kind
	file *zip.File
}

// Read returns the decompressed contents of the entry.
func (e Entry) Read() ([]byte, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", e.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.Name, err)
	}

	return data, nil
}

// Reader is an open container.
type Reader struct {
	Path    string
	Entries []Entry
	zr      *zip.ReadCloser
}

// Open opens the container at path. Entries are listed in central directory
// order.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", path, err)
	}

	r := &Reader{Path: path, zr: zr, Entries: make([]Entry, 0, len(zr.File))}

	for _, f := range zr.File {
		r.Entries = append(r.Entries, Entry{Name: f.Name, Kind: Classify(f.Name), file: f})
	}

	return r, nil
}

// Classes returns the class entries in container order.
func (r *Reader) Classes() []Entry {
	var out []Entry

	for _, e := range r.Entries {
		if e.Kind == KindClass {
			out = append(out, e)
		}
	}

	return out
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.zr.Close()
}
