package stream

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const DefaultCharset = "utf-8"

// TextDecoder turns response bytes into text incrementally. A multi-byte
// sequence cut by a read boundary is held back until the rest arrives, so a
// TextDecoder must live for the whole stream.
type TextDecoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

func NewTextDecoder(charset string) (*TextDecoder, error) {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		charset = DefaultCharset
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return &TextDecoder{
		t:   enc.NewDecoder(),
		dst: make([]byte, 1024),
	}, nil
}

// Decode converts chunk and returns the text that is complete so far.
func (d *TextDecoder) Decode(chunk []byte) (string, error) {
	return d.transform(chunk, false)
}

// Finish flushes held-back bytes at end of stream and resets the decoder.
// Incomplete sequences become replacement characters.
func (d *TextDecoder) Finish() (string, error) {
	text, err := d.transform(nil, true)
	d.t.Reset()
	d.pending = nil
	return text, err
}

func (d *TextDecoder) transform(chunk []byte, atEOF bool) (string, error) {
	src := append(d.pending, chunk...)
	d.pending = nil
	if len(src) == 0 && !atEOF {
		return "", nil
	}
	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out.Write(d.dst[:nDst])
		src = src[nSrc:]
		switch {
		case err == nil:
			return out.String(), nil
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				d.dst = make([]byte, 2*len(d.dst))
			}
		case errors.Is(err, transform.ErrShortSrc) && !atEOF:
			d.pending = append([]byte(nil), src...)
			return out.String(), nil
		default:
			return out.String(), fmt.Errorf("decode response text: %w", err)
		}
	}
}
