package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"DressCode/internal/cli/api"
)

// copyImage копирует фото в dir под именем <uuid>.<ext> и возвращает новый путь.
func copyImage(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".jpg"
	}
	dst := filepath.Join(dir, strings.ReplaceAll(uuid.NewString(), "-", "")+ext)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return dst, nil
}

// readImagePart reads a local image as a multipart file.
func readImagePart(path string) (api.FilePart, error) {
	if strings.TrimSpace(path) == "" {
		return api.FilePart{}, errors.New("no image")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return api.FilePart{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return api.FilePart{}, fmt.Errorf("read image %s: empty file", path)
	}
	return part(filepath.Base(path), data), nil
}

// removeInside удаляет path, только если файл лежит внутри dir.
func removeInside(path, dir string) error {
	if path == "" || dir == "" {
		return nil
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
