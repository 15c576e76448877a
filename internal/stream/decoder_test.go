package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextDecoderCarriesSplitRune(t *testing.T) {
	dec, err := NewTextDecoder("")
	require.NoError(t, err)

	raw := []byte("café 日")
	var got strings.Builder
	for i := range raw {
		text, err := dec.Decode(raw[i : i+1])
		require.NoError(t, err)
		got.WriteString(text)
	}
	tail, err := dec.Finish()
	require.NoError(t, err)
	got.WriteString(tail)
	assert.Equal(t, "café 日", got.String())
}

func TestTextDecoderHoldsPartialSequence(t *testing.T) {
	dec, err := NewTextDecoder("utf-8")
	require.NoError(t, err)

	text, err := dec.Decode([]byte{'a', 0xC3})
	require.NoError(t, err)
	assert.Equal(t, "a", text)

	text, err = dec.Decode([]byte{0xA9, 'b'})
	require.NoError(t, err)
	assert.Equal(t, "éb", text)
}

func TestTextDecoderFinishReplacesTruncatedSequence(t *testing.T) {
	dec, err := NewTextDecoder("utf-8")
	require.NoError(t, err)

	text, err := dec.Decode([]byte{'x', 0xE6, 0x97})
	require.NoError(t, err)
	assert.Equal(t, "x", text)

	tail, err := dec.Finish()
	require.NoError(t, err)
	assert.NotEmpty(t, tail)
	assert.Empty(t, strings.Trim(tail, "\uFFFD"))
}

func TestTextDecoderLatin1(t *testing.T) {
	dec, err := NewTextDecoder("iso-8859-1")
	require.NoError(t, err)
	text, err := dec.Decode([]byte{'a', 0xF1, 'o'})
	require.NoError(t, err)
	assert.Equal(t, "año", text)
}

func TestTextDecoderLargeChunk(t *testing.T) {
	dec, err := NewTextDecoder("utf-8")
	require.NoError(t, err)
	input := strings.Repeat("ñ", 5000)
	text, err := dec.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, input, text)
}

func TestTextDecoderUnknownCharset(t *testing.T) {
	_, err := NewTextDecoder("klingon")
	assert.Error(t, err)
}

type erroringReader struct {
	data []byte
	err  error
}

func (r *erroringReader) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	r.data = r.data[n:]
	if len(r.data) == 0 {
		return n, r.err
	}
	return n, nil
}

func TestReaderSourceDefersErrorAfterData(t *testing.T) {
	boom := errors.New("boom")
	src := NewReaderSource(&erroringReader{data: []byte("abc"), err: boom}, 0)

	chunk, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", string(chunk))

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestReaderSourceRespectsReadSize(t *testing.T) {
	src := NewReaderSource(strings.NewReader("abcdef"), 4)
	chunk, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(chunk))
	chunk, err = src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ef", string(chunk))
	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderSourceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewReaderSource(strings.NewReader("abc"), 0)
	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseObject(t *testing.T) {
	content, err := ParseObject(`{"content":"a","id":3}`)
	require.NoError(t, err)
	assert.Equal(t, "a", content)

	content, err = ParseObject(`{"content":""}`)
	require.NoError(t, err)
	assert.Equal(t, "", content)

	var decodeErr *DecodeError
	for _, candidate := range []string{`{"content":"a`, `ello"}`, "  \n", ""} {
		_, err = ParseObject(candidate)
		assert.ErrorAs(t, err, &decodeErr, candidate)
	}
	for _, candidate := range []string{`["content"]`, `"content"`, "123", "true"} {
		_, err = ParseObject(candidate)
		require.ErrorAs(t, err, &decodeErr, candidate)
		assert.Equal(t, "not an object", decodeErr.Reason)
	}

	var schemaErr *SchemaError
	for candidate, reason := range map[string]string{
		`{"role":"assistant"}`:          "missing content",
		`{"content":42}`:                "content is not a string",
		`{"content":null}`:              "content is not a string",
		`{"content":"a","content":7}`:   "content is not a string",
		`{"meta":{"content":"nested"}}`: "missing content",
	} {
		_, err = ParseObject(candidate)
		require.ErrorAs(t, err, &schemaErr, candidate)
		assert.Equal(t, reason, schemaErr.Reason)
	}
}

func TestParseObjectDuplicateKeyLastWins(t *testing.T) {
	content, err := ParseObject(`{"content":"first","content":"second"}`)
	require.NoError(t, err)
	assert.Equal(t, "second", content)
}

func TestDecodeErrorAbbreviatesCandidate(t *testing.T) {
	err := &DecodeError{Candidate: strings.Repeat("x", 200)}
	assert.Less(t, len(err.Error()), 120)
}
