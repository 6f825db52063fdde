package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// DefaultCompressMinLength is the smallest body worth compressing.
const DefaultCompressMinLength = 1024

// compressWriter buffers the body until it reaches minLength, then switches
// to brotli for the rest of the response. Short bodies are written as-is.
type compressWriter struct {
	gin.ResponseWriter
	enc        *brotli.Writer
	buf        []byte
	minLength  int
	compressed bool
}

func (w *compressWriter) Write(data []byte) (int, error) {
	if w.compressed {
		return w.enc.Write(data)
	}
	w.buf = append(w.buf, data...)
	if len(w.buf) < w.minLength {
		return len(data), nil
	}

	w.compressed = true
	h := w.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	if _, err := w.enc.Write(w.buf); err != nil {
		return 0, err
	}
	w.buf = nil
	return len(data), nil
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// finish flushes whatever is left: the brotli stream when compression
// started, the raw buffer otherwise.
func (w *compressWriter) finish() error {
	if w.compressed {
		return w.enc.Close()
	}
	if len(w.buf) == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.buf)
	w.buf = nil
	return err
}

// Compress brotli-encodes JSON responses of at least minLength bytes for
// clients that accept "br". WebSocket upgrades pass through untouched.
func Compress(minLength int) gin.HandlerFunc {
	if minLength <= 0 {
		minLength = DefaultCompressMinLength
	}

	return func(c *gin.Context) {
		if isUpgrade(c.Request) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		cw := &compressWriter{
			ResponseWriter: c.Writer,
			minLength:      minLength,
			enc:            brotli.NewWriterLevel(c.Writer, brotli.DefaultCompression),
		}
		c.Writer = cw
		c.Next()

		if err := cw.finish(); err != nil {
			_ = c.Error(err)
		}
	}
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		// "br;q=0.8" still counts.
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}

// NoStore marks responses as private and uncacheable. Results and
// statistics are per-user.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, no-store")
		c.Next()
	}
}
