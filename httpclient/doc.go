// Package httpclient provides a parameter-driven REST client.
//
// A Request carries a resource template and an ordered list of typed
// parameters (query, form, URL segment, header, cookie, body) plus file
// attachments. A Client merges its default parameters into each request,
// builds the URL, composes the body (multipart, serialized, form or none),
// runs the authenticator and sends the request through its Transport.
//
// Execute never fails because of the HTTP status code or a transport
// problem: the returned Response records what happened in ResponseStatus,
// StatusCode and ErrorException. Build failures are always returned as
// errors. Options.ThrowOnAnyError and Options.ThrowOnDeserializationError
// turn recorded failures into returned errors.
//
// Subpackages:
//
//   - serializer: codecs and content negotiation
//   - sse: Server-Sent Events reader used by StreamResponse.Events
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Options{
//	    BaseURL: "https://api.example.com/{version}",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth("my-token"),
//	})
//	_ = client.AddDefaultURLSegment("version", "v2")
//
//	req := httpclient.NewRequest(http.MethodGet, "users/{id}").
//	    AddURLSegment("id", 123).
//	    AddQueryParameter("expand", "roles")
//
//	resp, err := httpclient.ExecuteAs[User](ctx, client, req)
//	if err != nil {
//	    return err // request could not be built
//	}
//	if !resp.IsSuccessful() {
//	    return resp.ThrowIfError()
//	}
//
// # Typed Helpers
//
//	user, err := httpclient.Get[User](client, ctx, "users/{id}", httpclient.WithURLSegment("id", 123))
//
// Typed helpers return an error for any non-2xx status.
package httpclient
