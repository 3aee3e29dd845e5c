package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nazirsaif/nexus-sub000/pkg/timer"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// DiskStore persists uploaded document files under a root directory,
// one subdirectory per document.
type DiskStore struct {
	root    string
	maxSize int64 // bytes
	exts    map[string]bool
}

func NewDiskStore(root string, maxSizeMB int64, allowedExts []string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	exts := make(map[string]bool, len(allowedExts))
	for _, e := range allowedExts {
		exts[strings.ToLower(e)] = true
	}
	return &DiskStore{root: root, maxSize: maxSizeMB << 20, exts: exts}, nil
}

// SanitizeFilename strips path components and unsafe characters from an
// uploaded filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}

// Validate checks size and extension before anything is written.
func (s *DiskStore) Validate(header *multipart.FileHeader) error {
	if header.Size > s.maxSize {
		return fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSize)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !s.exts[ext] {
		return fmt.Errorf("file type %q is not allowed", ext)
	}
	return nil
}

// Save writes the uploaded file under <root>/<documentID>/<sanitized name>
// and returns the stored name.
func (s *DiskStore) Save(documentID string, header *multipart.FileHeader) (string, error) {
	defer timer.Track("DiskStore.Save")()

	if err := s.Validate(header); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create document dir: %w", err)
	}

	storedName := SanitizeFilename(header.Filename)
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, storedName))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1)); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return storedName, nil
}

// Path returns the on-disk path for a stored file.
func (s *DiskStore) Path(documentID, storedName string) string {
	return filepath.Join(s.root, documentID, SanitizeFilename(storedName))
}

// Remove deletes a document's directory and everything in it.
func (s *DiskStore) Remove(documentID string) error {
	if documentID == "" {
		return fmt.Errorf("empty document id")
	}
	return os.RemoveAll(filepath.Join(s.root, documentID))
}
