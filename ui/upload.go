package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/google/uuid"
)

// videoExtensions are offered by the file picker.
var videoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v"}

// isVideoFile reports whether name has one of the accepted extensions.
func isVideoFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range videoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// copyUpload writes r to a uniquely named file in dir, keeping the extension of name.
func copyUpload(r io.Reader, name, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// localVideoPath returns the file backing reader, copying it into dir when it is not a local file.
func localVideoPath(reader fyne.URIReadCloser, dir string) (string, error) {
	uri := reader.URI()
	if uri.Scheme() == "file" {
		return uri.Path(), nil
	}
	return copyUpload(reader, uri.Name(), dir)
}
