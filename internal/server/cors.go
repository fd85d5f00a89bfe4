package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"
)

// corsHeaders are sent on every response, success or error.
var corsHeaders = [...][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type"},
}

func injectCORS(h http.Header) {
	for _, kv := range corsHeaders {
		h.Set(kv[0], kv[1])
	}
}

// corsResponseWriter adds the CORS headers at the moment the header block
// is committed, so they land after whatever the wrapped handler set.
type corsResponseWriter struct {
	http.ResponseWriter
	status   int
	bytes    int64
	hijacked bool
}

func (w *corsResponseWriter) WriteHeader(code int) {
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	injectCORS(w.Header())
	if code >= 200 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *corsResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *corsResponseWriter) Flush() {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *corsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	w.hijacked = true
	return h.Hijack()
}

func (w *corsResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// requestObserver is told about every completed request.
type requestObserver func(r *http.Request, status int, bytes int64, elapsed time.Duration)

// withCORS wraps next so that every response it produces carries the
// CORS headers.
func withCORS(next http.Handler, observe requestObserver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		cw := &corsResponseWriter{ResponseWriter: w}
		next.ServeHTTP(cw, r)
		if cw.status == 0 && !cw.hijacked {
			// Handler returned without writing; net/http would send a bare 200.
			cw.WriteHeader(http.StatusOK)
		}
		if observe != nil {
			observe(r, cw.status, cw.bytes, time.Since(start))
		}
	})
}
