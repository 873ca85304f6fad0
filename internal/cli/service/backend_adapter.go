package service

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"DressCode/internal/cli/api"
)

// BackendTryOn adapts api.Backend to TryOner.
type BackendTryOn struct {
	Backend *api.Backend
}

func part(name string, data []byte) api.FilePart {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return api.FilePart{FileName: name, ContentType: ct, Data: data}
}

// TryOn sends both photos to /api/tryon.
func (b BackendTryOn) TryOn(ctx context.Context, person, cloth []byte, personName, clothName string) ([]byte, string, error) {
	res, err := b.Backend.TryOn(ctx, part(personName, person), part(clothName, cloth))
	if err != nil {
		return nil, "", err
	}
	return res.Image, res.ContentType, nil
}
