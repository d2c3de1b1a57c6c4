package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const defaultFileContentType = "application/octet-stream"

// FileParameter is a file attached to a multipart request.
type FileParameter struct {
	// Name is the form field name.
	Name string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the part content type. Empty means
	// application/octet-stream unless content detection is enabled.
	ContentType string
	// Length is the content length in bytes, or -1 if unknown.
	Length int64
	// Open returns the file content. It is called once per send.
	Open func() (io.ReadCloser, error)

	detect func() (string, error)
}

// NewFileFromPath creates a file parameter that reads path lazily.
func NewFileFromPath(name, path string) (FileParameter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileParameter{}, fmt.Errorf("httpclient: stat file: %w", err)
	}
	if info.IsDir() {
		return FileParameter{}, fmt.Errorf("httpclient: %s is a directory", path)
	}
	return FileParameter{
		Name:     name,
		FileName: filepath.Base(path),
		Length:   info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
		detect: func() (string, error) {
			mt, err := mimetype.DetectFile(path)
			if err != nil {
				return "", err
			}
			return mt.String(), nil
		},
	}, nil
}

// NewFileFromBytes creates a file parameter over an in-memory buffer.
func NewFileFromBytes(name string, data []byte, fileName, contentType string) FileParameter {
	return FileParameter{
		Name:        name,
		FileName:    fileName,
		ContentType: contentType,
		Length:      int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
		detect: func() (string, error) {
			return mimetype.Detect(data).String(), nil
		},
	}
}

// NewFileFromReader creates a file parameter over r. The reader can only be
// sent once, so requests carrying it cannot follow 307/308 redirects.
func NewFileFromReader(name string, r io.Reader, length int64, fileName, contentType string) FileParameter {
	used := false
	return FileParameter{
		Name:        name,
		FileName:    fileName,
		ContentType: contentType,
		Length:      length,
		Open: func() (io.ReadCloser, error) {
			if used {
				return nil, fmt.Errorf("httpclient: file %q reader already consumed", fileName)
			}
			used = true
			if rc, ok := r.(io.ReadCloser); ok {
				return rc, nil
			}
			return io.NopCloser(r), nil
		},
	}
}

// resolveContentType returns the part content type, detecting it from the
// content when allowed.
func (f FileParameter) resolveContentType(detect bool) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	if detect && f.detect != nil {
		if ct, err := f.detect(); err == nil && ct != "" {
			return ct
		}
	}
	return defaultFileContentType
}
