package logging

import (
	"net/http"
)

// writerWrapper wraps a http.ResponseWriter and tracks the status code and the
// number of body bytes written to it.
type writerWrapper struct {
	http.ResponseWriter

	// StatusCode is the last code passed to WriteHeader. If WriteHeader is never
	// called, http.StatusOK is assumed.
	StatusCode int

	// WrittenBytes is the number of bytes successfully written by Write.
	WrittenBytes int64
}

func newWriterWrapper(w http.ResponseWriter) *writerWrapper {
	return &writerWrapper{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (w *writerWrapper) WriteHeader(code int) {
	w.StatusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *writerWrapper) Write(data []byte) (int, error) {
	n, err := w.ResponseWriter.Write(data)
	w.WrittenBytes += int64(n)
	return n, err
}
