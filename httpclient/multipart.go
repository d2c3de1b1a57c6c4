package httpclient

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"

	"github.com/google/uuid"

	"github.com/kbukum/restkit/httpclient/serializer"
)

// multipartBuilder collects the static bytes produced by multipart.Writer
// and cuts them around file contents, so files are streamed on send while
// the total length is still known up front.
type multipartBuilder struct {
	buf      bytes.Buffer
	segments []multipartSegment
}

type multipartSegment struct {
	static []byte
	file   *FileParameter
}

func (m *multipartBuilder) Write(p []byte) (int, error) {
	return m.buf.Write(p)
}

func (m *multipartBuilder) cut() {
	if m.buf.Len() == 0 {
		return
	}
	m.segments = append(m.segments, multipartSegment{static: bytes.Clone(m.buf.Bytes())})
	m.buf.Reset()
}

func (m *multipartBuilder) addFile(f FileParameter) {
	m.cut()
	m.segments = append(m.segments, multipartSegment{file: &f})
}

// length returns the exact body size, or -1 if a file length is unknown.
func (m *multipartBuilder) length() int64 {
	var n int64
	for _, s := range m.segments {
		if s.file == nil {
			n += int64(len(s.static))
			continue
		}
		if s.file.Length < 0 {
			return -1
		}
		n += s.file.Length
	}
	return n
}

func (m *multipartBuilder) open() (io.ReadCloser, error) {
	mr := &multiReadCloser{}
	readers := make([]io.Reader, 0, len(m.segments))
	for _, s := range m.segments {
		if s.file == nil {
			readers = append(readers, bytes.NewReader(s.static))
			continue
		}
		lf := &lazyFile{open: s.file.Open}
		mr.files = append(mr.files, lf)
		readers = append(readers, lf)
	}
	mr.Reader = io.MultiReader(readers...)
	return mr, nil
}

// multipart builds a multipart/form-data body with a fresh boundary.
func (c bodyComposer) multipart(fields []Parameter, bodyParam *Parameter, files []FileParameter) (*requestBody, error) {
	var mb multipartBuilder
	w := multipart.NewWriter(&mb)
	boundary := "restkit-" + uuid.NewString()
	if err := w.SetBoundary(boundary); err != nil {
		return nil, NewInvalidArgumentError(err.Error())
	}

	for _, p := range fields {
		v, err := FormatValue(p.Value)
		if err != nil {
			return nil, NewInvalidArgumentError(err.Error())
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+escapeQuotes(p.Name)+`"`)
		if p.ContentType != "" && c.callerContentType != "" &&
			serializer.MediaType(p.ContentType) == serializer.MediaType(c.callerContentType) {
			header.Set("Content-Type", p.ContentType)
		}
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(encodeText(v, c.encoding)); err != nil {
			return nil, err
		}
	}

	if bodyParam != nil {
		inner := c
		inner.callerContentType = ""
		body, err := inner.serialize(*bodyParam)
		if err != nil {
			return nil, err
		}
		name := bodyParam.Name
		if name == "" {
			name = "body"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+escapeQuotes(name)+`"`)
		header.Set("Content-Type", body.contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, err
		}
		rc, err := body.open()
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(part, rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.Name)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
		header.Set("Content-Type", f.resolveContentType(c.detectFiles))
		if _, err := w.CreatePart(header); err != nil {
			return nil, err
		}
		mb.addFile(f)
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	mb.cut()

	contentType := w.FormDataContentType()
	if c.callerContentType != "" && !hasBoundary(c.callerContentType) {
		contentType = c.callerContentType + "; boundary=" + boundary
	}

	return &requestBody{
		contentType: contentType,
		length:      mb.length(),
		open:        mb.open,
	}, nil
}

func hasBoundary(contentType string) bool {
	_, params, err := mime.ParseMediaType(contentType)
	return err == nil && params["boundary"] != ""
}

// escapeQuotes replaces special characters in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}

// lazyFile opens a file on first read and closes it at EOF.
type lazyFile struct {
	open   func() (io.ReadCloser, error)
	rc     io.ReadCloser
	closed bool
}

func (l *lazyFile) Read(p []byte) (int, error) {
	if l.closed {
		return 0, io.EOF
	}
	if l.rc == nil {
		rc, err := l.open()
		if err != nil {
			return 0, err
		}
		l.rc = rc
	}
	n, err := l.rc.Read(p)
	if errors.Is(err, io.EOF) {
		_ = l.Close()
	}
	return n, err
}

func (l *lazyFile) Close() error {
	if l.closed || l.rc == nil {
		l.closed = true
		return nil
	}
	l.closed = true
	return l.rc.Close()
}

type multiReadCloser struct {
	io.Reader
	files []*lazyFile
}

func (m *multiReadCloser) Close() error {
	var errs []error
	for _, f := range m.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}
