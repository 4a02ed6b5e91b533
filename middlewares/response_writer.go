package middlewares

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"strings"
)

// captureWriter buffers JSON responses so they can be rewritten once the
// handler returns. Anything else is streamed through untouched. The
// decision is made when the status line is committed.
type captureWriter struct {
	http.ResponseWriter
	buf         bytes.Buffer
	limit       int64
	status      int
	decided     bool
	passthrough bool
	headOnly    bool
}

func newCaptureWriter(w http.ResponseWriter, r *http.Request, limit int64) *captureWriter {
	return &captureWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
		limit:          limit,
		headOnly:       r.Method == http.MethodHead,
	}
}

func (w *captureWriter) decide(code int) {
	w.decided = true
	w.status = code
	if !w.capturable(code) {
		w.passthrough = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *captureWriter) capturable(code int) bool {
	if w.headOnly || code == http.StatusNoContent || code == http.StatusNotModified || code < 200 {
		return false
	}
	if w.Header().Get("Content-Encoding") != "" {
		return false
	}
	return isJSON(w.Header().Get("Content-Type"))
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

// WriteHeader records the status; for captured responses it is written later.
func (w *captureWriter) WriteHeader(code int) {
	if w.decided {
		return
	}
	w.decide(code)
}

// Write buffers captured bodies and streams the rest.
func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.decided {
		w.decide(http.StatusOK)
	}
	if w.passthrough {
		return w.ResponseWriter.Write(b)
	}
	if w.limit > 0 && int64(w.buf.Len()+len(b)) > w.limit {
		if err := w.release(); err != nil {
			return 0, err
		}
		return w.ResponseWriter.Write(b)
	}
	return w.buf.Write(b)
}

// release gives up capturing and sends what was buffered so far.
func (w *captureWriter) release() error {
	w.passthrough = true
	w.ResponseWriter.WriteHeader(w.status)
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// captured reports whether a body is waiting to be rewritten.
func (w *captureWriter) captured() bool {
	return w.decided && !w.passthrough
}

// Flush stops capturing: a handler that flushes is streaming.
func (w *captureWriter) Flush() {
	if w.captured() {
		_ = w.release()
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements the http.Hijacker interface.
func (w *captureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter.
func (w *captureWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
