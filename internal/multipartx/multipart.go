// Package multipartx builds multipart/form-data bodies from ordered text
// fields and binary streams. The dfs server is order-sensitive for file
// parts, so parts are emitted exactly in insertion order: all fields first,
// then all streams.
package multipartx

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const defaultContentType = "application/octet-stream"

type field struct {
	name  string
	value string
}

type stream struct {
	name        string
	source      io.Reader
	path        string // set for file-backed sources
	filename    string
	contentType string
}

// Builder accumulates parts for one multipart body.
type Builder struct {
	fields  []field
	streams []stream
}

// AddField appends a text field.
func (b *Builder) AddField(name, value string) {
	b.fields = append(b.fields, field{name: name, value: value})
}

// AddReader appends a binary stream read from r. An empty contentType
// defaults to application/octet-stream.
func (b *Builder) AddReader(name string, r io.Reader, filename, contentType string) {
	if contentType == "" {
		contentType = defaultContentType
	}
	b.streams = append(b.streams, stream{
		name:        name,
		source:      r,
		filename:    filename,
		contentType: contentType,
	})
}

// AddFile appends a file-backed stream. The part filename is the file's base
// name and the content type is derived from its extension. A file-backed
// part encodes byte-identically to an AddReader part with the same content,
// filename, and content type.
func (b *Builder) AddFile(name, path string) {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = defaultContentType
	}
	b.streams = append(b.streams, stream{
		name:        name,
		path:        path,
		filename:    filepath.Base(path),
		contentType: contentType,
	})
}

// Build encodes the accumulated parts with a random boundary.
func (b *Builder) Build() (boundary string, body []byte, err error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := b.encode(w); err != nil {
		return "", nil, err
	}
	return w.Boundary(), buf.Bytes(), nil
}

// BuildWithBoundary encodes the accumulated parts with a caller-supplied
// boundary, yielding deterministic output for identical input.
func (b *Builder) BuildWithBoundary(boundary string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, errors.Wrap(err, "multipartx: set boundary")
	}
	if err := b.encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Builder) encode(w *multipart.Writer) error {
	for _, f := range b.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return errors.Wrapf(err, "multipartx: write field %q", f.name)
		}
	}
	for _, s := range b.streams {
		if err := writeStream(w, s); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "multipartx: close writer")
	}
	return nil
}

func writeStream(w *multipart.Writer, s stream) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+escapeQuotes(s.name)+`"; filename="`+escapeQuotes(s.filename)+`"`)
	header.Set("Content-Type", s.contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return errors.Wrapf(err, "multipartx: create part %q", s.name)
	}

	source := s.source
	if s.path != "" {
		f, err := os.Open(s.path)
		if err != nil {
			return errors.Wrapf(err, "multipartx: open %q", s.path)
		}
		defer f.Close()
		source = f
	}
	if _, err := io.Copy(part, source); err != nil {
		return errors.Wrapf(err, "multipartx: copy part %q", s.name)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
