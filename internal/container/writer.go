package container

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// FixedTime is the modification time of every written entry.
var FixedTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// MS-DOS encoding of FixedTime.
const (
	fixedDOSDate = 1<<5 | 1
	fixedDOSTime = 0
)

// Extra field IDs that carry timestamps.
const (
	extraNTFS     = 0x000a
	extraExtTime  = 0x5455
	extraInfoZip1 = 0x5855
)

// ErrDuplicateEntry is returned when an entry name is written twice.
var ErrDuplicateEntry = errors.New("duplicate entry")

// Writer writes a container with normalized timestamps.
type Writer struct {
	zw   *zip.Writer
	seen map[string]struct{}
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w), seen: make(map[string]struct{})}
}

// Has reports whether name was already written.
func (w *Writer) Has(name string) bool {
	_, ok := w.seen[name]
	return ok
}

func (w *Writer) claim(name string) error {
	if w.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	w.seen[name] = struct{}{}

	return nil
}

// normalize pins the header to FixedTime. The deprecated MS-DOS fields are
// set directly because CreateRaw ignores Modified.
func normalize(fh *zip.FileHeader) {
	fh.Modified = time.Time{}
	fh.ModifiedDate = fixedDOSDate
	fh.ModifiedTime = fixedDOSTime
	fh.Extra = stripTimeExtras(fh.Extra)
}

// stripTimeExtras drops timestamp blocks from a zip extra field. A malformed
// extra field is dropped entirely.
func stripTimeExtras(extra []byte) []byte {
	var out []byte

	for len(extra) > 0 {
		if len(extra) < 4 {
			return out
		}

		id := binary.LittleEndian.Uint16(extra)
		size := int(binary.LittleEndian.Uint16(extra[2:]))

		if len(extra) < 4+size {
			return out
		}

		switch id {
		case extraNTFS, extraExtTime, extraInfoZip1:
		default:
			out = append(out, extra[:4+size]...)
		}

		extra = extra[4+size:]
	}

	return out
}

// CopyRaw copies an entry of another container without recompressing it.
func (w *Writer) CopyRaw(e Entry) error {
	if err := w.claim(e.Name); err != nil {
		return err
	}

	header := e.file.FileHeader
	normalize(&header)

	src, err := e.file.OpenRaw()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", e.Name, err)
	}

	dst, err := w.zw.CreateRaw(&header)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", e.Name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy %s: %w", e.Name, err)
	}

	return nil
}

// WriteFile writes a deflated entry.
func (w *Writer) WriteFile(name string, data []byte) error {
	if err := w.claim(name); err != nil {
		return err
	}

	header := &zip.FileHeader{Name: name, Method: zip.Deflate}
	normalize(header)

	dst, err := w.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

// Close writes the central directory. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("failed to finish container: %w", err)
	}

	return nil
}
