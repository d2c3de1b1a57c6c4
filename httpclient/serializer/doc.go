// Package serializer provides the codecs and the content negotiation
// registry used by httpclient.
//
// A Registry holds one record per DataFormat. Registering a format again
// replaces its record. Records are scanned in registration order when a
// response content type has to be matched, so the first codec that accepts
// a content type wins.
//
//	reg := serializer.DefaultRegistry()
//	reg.Register(serializer.DataFormatYAML, serializer.NewYAML)
//
//	codec, ok := reg.SelectForResponse("application/vnd.api+json", body, serializer.DataFormatNone)
package serializer
