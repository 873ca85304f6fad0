package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// gzipWriter откладывает заголовки до первого байта тела: ответ без тела уходит без сжатия.
type gzipWriter struct {
	http.ResponseWriter
	zw     *gzip.Writer
	status int
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if w.zw == nil {
		w.start()
	}
	return w.zw.Write(b)
}

func (w *gzipWriter) WriteHeader(code int) {
	if w.zw == nil && w.status == 0 {
		w.status = code
	}
}

func (w *gzipWriter) start() {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	// длина исходного тела к сжатому ответу не относится
	h := w.ResponseWriter.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
	w.ResponseWriter.WriteHeader(w.status)
	w.zw = gzip.NewWriter(w.ResponseWriter)
}

// finish закрывает поток или, если тела не было, отправляет один статус.
func (w *gzipWriter) finish() error {
	if w.zw != nil {
		return w.zw.Close()
	}
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(w.status)
	}
	return nil
}

type gzipReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func (g *gzipReader) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReader) Close() error {
	if err := g.zr.Close(); err != nil {
		return err
	}
	return g.r.Close()
}

// WithGzip сжимает ответ, если клиент принимает gzip, и распаковывает
// тело запроса с Content-Encoding: gzip.
func WithGzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "bad gzip body", http.StatusBadRequest)
				return
			}
			r.Body = &gzipReader{r: r.Body, zr: zr}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipWriter{ResponseWriter: w}
		defer func() { _ = gw.finish() }()
		next.ServeHTTP(gw, r)
	})
}
