package handlers

import (
	"DressCode/internal/middleware"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// writeJSON отдаёт конверт {"ok", "error", "elapsed_ms", ...поля}.
func writeJSON(w http.ResponseWriter, status int, start time.Time, fields map[string]any) {
	body := map[string]any{"ok": status < 400}
	for k, v := range fields {
		body[k] = v
	}
	if !start.IsZero() {
		body["elapsed_ms"] = time.Since(start).Milliseconds()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, start time.Time, msg string) {
	writeJSON(w, status, start, map[string]any{"error": msg})
}

// requireUser достаёт user_id или отвечает 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, time.Time{}, "unauthorized")
	}
	return uid, ok
}

var errMissingFile = errors.New("file is missing")

// readFormFile читает файл из multipart-формы целиком.
func readFormFile(r *http.Request, field string) ([]byte, *multipart.FileHeader, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, errMissingFile
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, hdr, nil
}

// parseMultipart ограничивает тело запроса и разбирает форму.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxMB int) error {
	limit := int64(maxMB) << 20
	// запас на поля формы и заголовки частей
	r.Body = http.MaxBytesReader(w, r.Body, 2*limit+(1<<20))
	return r.ParseMultipartForm(10 << 20)
}

func contentTypeOf(hdr *multipart.FileHeader, data []byte) string {
	if hdr != nil {
		if ct := hdr.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
			return ct
		}
	}
	return http.DetectContentType(data)
}
