package bmp

import (
	"fmt"
	"io"
)

// Source supplies bitmap bytes by absolute file offset. Bottom-up row
// order means reads arrive repeated and in decreasing offset order.
//
// Reading past the end of the data is not an error: the unread tail of
// p is zeroed. Only genuine I/O failures are reported, and the engine
// validates all geometry before it reads pixel data, so a well-formed
// file is never read past its end.
type Source interface {
	ReadAt(p []byte, off int64) error
}

// FileSource adapts a seekable stream, such as an *os.File or an
// afero.File, to the Source interface.
type FileSource struct {
	r io.ReadSeeker
}

// NewFileSource returns a Source reading from r. The caller keeps
// ownership of r and closes it after the last blit.
func NewFileSource(r io.ReadSeeker) *FileSource {
	return &FileSource{r}
}

func (s *FileSource) ReadAt(p []byte, off int64) error {
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("bmp: seek: %w", err)
	}
	n, err := io.ReadFull(s.r, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		clear(p[n:])
		err = nil
	}
	if err != nil {
		return fmt.Errorf("bmp: read: %w", err)
	}
	return nil
}

// BufferSource is a Source over an in-memory bitmap, typically one
// compiled into the program. The slice is borrowed, never written.
type BufferSource []byte

func (s BufferSource) ReadAt(p []byte, off int64) error {
	n := 0
	if 0 <= off && off < int64(len(s)) {
		n = copy(p, s[off:])
	}
	clear(p[n:])
	return nil
}
