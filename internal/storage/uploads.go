package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxUploadBytes is the per-file ceiling for report attachments.
const MaxUploadBytes = 5 << 20 // 5 MB

// ErrFileTooLarge is returned before anything is written when an attachment
// exceeds MaxUploadBytes.
var ErrFileTooLarge = errors.New("file exceeds the 5 MB upload limit")

// DiskUploadStore keeps report attachments in a shared directory, served as
// static content under /uploads/.
type DiskUploadStore struct {
	dir string
}

// NewDiskUploadStore creates the upload directory if needed.
func NewDiskUploadStore(dir string) (*DiskUploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	log.Info().Str("dir", dir).Msg("Disk upload store initialized")
	return &DiskUploadStore{dir: dir}, nil
}

// Dir returns the directory served at /uploads/.
func (s *DiskUploadStore) Dir() string { return s.dir }

// Save stores the uploaded file under a generated unique filename and returns
// that filename. Only the filename is persisted on report documents.
func (s *DiskUploadStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	name := uploadFilename(fh.Filename)
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	log.Info().Str("filename", name).Int64("size", fh.Size).Msg("Attachment stored")
	return name, nil
}

// Open returns the stored file for streaming back to a client.
func (s *DiskUploadStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	// Reject path traversal; stored names never contain separators.
	if filepath.Base(filename) != filename {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(s.dir, filename))
}

// HealthCheck verifies the upload directory is still reachable.
func (s *DiskUploadStore) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("upload dir check failed: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload path %s is not a directory", s.dir)
	}
	return nil
}

// uploadFilename generates a unique stored name: millisecond timestamp plus
// the original base name, spaces flattened.
func uploadFilename(original string) string {
	base := strings.ReplaceAll(filepath.Base(original), " ", "_")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = uuid.New().String()
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)
}
