package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/kbukum/restkit/httpclient/serializer"
)

const contentTypeForm = "application/x-www-form-urlencoded"

// requestBody is a wire-ready payload. open may be called again to resend
// the body on redirects.
type requestBody struct {
	contentType string
	length      int64
	open        func() (io.ReadCloser, error)
}

func bytesBody(b []byte, contentType string) *requestBody {
	return &requestBody{
		contentType: contentType,
		length:      int64(len(b)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

// bodyComposer decides between multipart, serialized, form and no body.
type bodyComposer struct {
	method          string
	serializers     *serializer.Registry
	settings        serializer.Settings
	encoding        encoding.Encoding
	detectFiles     bool
	alwaysMultipart bool
	// callerContentType is the Content-Type header the caller set, if any.
	callerContentType string
}

func (c bodyComposer) compose(params []Parameter, files []FileParameter) (*requestBody, error) {
	var bodyParam *Parameter
	var formParams []Parameter
	for i := range params {
		switch params[i].Type {
		case ParameterBody:
			if bodyParam != nil {
				return nil, NewInvalidArgumentError("request has more than one body parameter")
			}
			bodyParam = &params[i]
		case ParameterGetOrPost:
			if formMethod(c.method) {
				formParams = append(formParams, params[i])
			}
		}
	}

	switch {
	case len(files) > 0 || c.alwaysMultipart:
		return c.multipart(formParams, bodyParam, files)
	case bodyParam != nil:
		return c.serialize(*bodyParam)
	case len(formParams) > 0:
		return c.form(formParams)
	default:
		return nil, nil
	}
}

// serialize renders a body parameter. Strings and byte slices are sent
// as-is; other values go through the registry.
func (c bodyComposer) serialize(p Parameter) (*requestBody, error) {
	contentType := c.callerContentType
	switch v := p.Value.(type) {
	case string:
		if contentType == "" {
			contentType = p.ContentType
		}
		if contentType == "" {
			contentType = "text/plain"
		}
		return bytesBody(encodeText(v, c.encoding), contentType), nil
	case []byte:
		if contentType == "" {
			contentType = p.ContentType
		}
		if contentType == "" {
			contentType = defaultFileContentType
		}
		return bytesBody(v, contentType), nil
	}

	codec, err := c.serializers.SelectForRequestBody(p.DataFormat, p.ContentType)
	if err != nil {
		return nil, NewSerializationError(err)
	}
	serializer.Configure(codec, c.settings)
	data, err := codec.Serialize(p.Value)
	if err != nil {
		return nil, NewSerializationError(fmt.Errorf("serialize %s body: %w", p.DataFormat, err))
	}
	if contentType == "" {
		contentType = p.ContentType
	}
	if contentType == "" {
		contentType = codec.ContentType()
	}
	return bytesBody(data, contentType), nil
}

func (c bodyComposer) form(params []Parameter) (*requestBody, error) {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		v, err := FormatValue(p.Value)
		if err != nil {
			return nil, NewInvalidArgumentError(err.Error())
		}
		pairs = append(pairs, FormEncoder(p.Name, c.encoding)+"="+FormEncoder(v, c.encoding))
	}
	contentType := c.callerContentType
	if contentType == "" {
		contentType = contentTypeForm
	}
	return bytesBody([]byte(strings.Join(pairs, "&")), contentType), nil
}
