// Package tee provides an http.ResponseWriter wrapper that saves the
// response body to a buffer while writing it through to the client.
package tee

import (
	"bytes"
	"net/http"
)

// ResponseSaver is a wrapper around http.ResponseWriter that forwards
// every write to the underlying writer untouched and independently
// accumulates the written bytes. Headers are not buffered: they pass
// straight through to the underlying writer.
type ResponseSaver struct {
	rw          http.ResponseWriter
	b           bytes.Buffer
	status      int
	wroteHeader bool
}

// NewResponseSaver returns a new ResponseSaver writing through to w.
func NewResponseSaver(w http.ResponseWriter) *ResponseSaver {
	return &ResponseSaver{rw: w}
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) Header() http.Header {
	return t.rw.Header()
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) WriteHeader(statusCode int) {
	if t.wroteHeader {
		return
	}
	t.wroteHeader = true
	// set the status code so we can return it later
	t.status = statusCode
	t.rw.WriteHeader(statusCode)
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) Write(b []byte) (int, error) {
	// write headers if not already written
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	t.b.Write(b)
	return t.rw.Write(b)
}

// Body returns the accumulated response body as one contiguous slice.
func (t *ResponseSaver) Body() []byte {
	return t.b.Bytes()
}

// Size returns the number of body bytes accumulated so far.
func (t *ResponseSaver) Size() int {
	return t.b.Len()
}

// StatusCode returns the status code of the response.
// It is zero if the wrapped handler never wrote anything.
func (t *ResponseSaver) StatusCode() int {
	return t.status
}
