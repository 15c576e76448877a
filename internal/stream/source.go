package stream

import (
	"context"
	"io"
)

const DefaultReadSize = 4096

// Source yields the raw response one read at a time. Next returns io.EOF once
// the stream is exhausted; an empty chunk with a nil error is legal.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

// ReaderSource reads chunks from an io.Reader such as an HTTP response body.
// The returned slice is only valid until the next call.
type ReaderSource struct {
	r   io.Reader
	buf []byte
	err error
}

func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultReadSize
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

func (s *ReaderSource) Next(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := s.r.Read(s.buf)
	if err != nil {
		s.err = err
		if n == 0 {
			return nil, err
		}
	}
	return s.buf[:n], nil
}
