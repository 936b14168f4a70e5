package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// EOF is the code stored after the last input byte. It never equals a byte.
const EOF = -1

// Source is the whole program as an indexable sequence of character codes,
// terminated by EOF.
type Source struct {
	codes []int
}

// NewSource builds a Source from an in-memory program.
func NewSource(b []byte) *Source {
	codes := make([]int, 0, len(b)+1)
	for _, c := range b {
		codes = append(codes, int(c))
	}

	return &Source{codes: append(codes, EOF)}
}

// ReadSource drains r byte by byte. A read failure stops reading; the bytes
// read before the failure are kept in the returned Source.
func ReadSource(r io.Reader) (*Source, error) {
	br := bufio.NewReader(r)
	src := &Source{}

	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			src.codes = append(src.codes, EOF)
			return src, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
		}

		src.codes = append(src.codes, int(c))
	}

	src.codes = append(src.codes, EOF)

	return src, nil
}

// Len returns the number of positions, including the trailing EOF.
func (s *Source) Len() int {
	return len(s.codes)
}

// At returns the code at position i, or EOF when i is outside the source.
func (s *Source) At(i int) int {
	if i < 0 || i >= len(s.codes) {
		return EOF
	}

	return s.codes[i]
}

// IndexFrom returns the first position at or after start holding c. The scan
// does not consume anything.
func (s *Source) IndexFrom(start, c int) (int, bool) {
	if start < 0 {
		start = 0
	}

	for i := start; i < len(s.codes); i++ {
		if s.codes[i] == c {
			return i, true
		}
	}

	return -1, false
}
