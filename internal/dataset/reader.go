package dataset

// reader.go holds the io.Reader wrappers applied to CSV uploads before
// encoding/csv sees them:
//
//   - bomSkipper drops a leading UTF-8 byte order mark (0xEF 0xBB 0xBF)
//   - runeSanitizer replaces invalid UTF-8 with U+FFFD as it streams
//   - sizeGuard fails the read once more than the allowed bytes arrive

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a buffered reader positioned after an optional BOM.
func skipBOM(r io.Reader) *bufio.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// runeSanitizer re-encodes the underlying stream rune by rune.
// bufio.Reader.ReadRune already reports each invalid byte as RuneError
// with size 1, so only the re-encoding lives here.
type runeSanitizer struct {
	src     *bufio.Reader
	pending []byte // encoded bytes of a rune that did not fit p
}

func newRuneSanitizer(src *bufio.Reader) *runeSanitizer {
	return &runeSanitizer{src: src}
}

// Read implements io.Reader.
func (s *runeSanitizer) Read(p []byte) (int, error) {
	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	var buf [utf8.UTFMax]byte
	for n < len(p) {
		r, _, err := s.src.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		size := utf8.EncodeRune(buf[:], r)
		copied := copy(p[n:], buf[:size])
		n += copied
		if copied < size {
			s.pending = append(s.pending[:0], buf[copied:size]...)
		}
	}
	return n, nil
}

// sizeGuard errors with ErrFileTooLarge once more than limit bytes are read.
type sizeGuard struct {
	r     io.Reader
	limit int64
	read  int64
}

// Read implements io.Reader.
func (g *sizeGuard) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	g.read += int64(n)
	if g.read > g.limit {
		return n, ErrFileTooLarge
	}
	return n, err
}

// BytesRead returns how many bytes have passed through the guard.
func (g *sizeGuard) BytesRead() int64 { return g.read }

// guard wraps r with a size limit; limit <= 0 means unlimited.
func guard(r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		return r
	}
	return &sizeGuard{r: r, limit: limit}
}

// wrapCSV applies the byte-level cleanups in order: size limit first so the
// cap counts raw upload bytes, then BOM removal, then UTF-8 repair.
func wrapCSV(r io.Reader, limit int64) io.Reader {
	return newRuneSanitizer(skipBOM(guard(r, limit)))
}
