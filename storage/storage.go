// Package storage archives uploaded contract documents on local disk or S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"contract-analyzer-backend/config"
	"contract-analyzer-backend/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no document exists under a key
var ErrNotFound = errors.New("document not found")

// Document is an uploaded contract file to archive
type Document struct {
	UserID     uuid.UUID
	AnalysisID uuid.UUID
	FileName   string
	// MediaType is the type detected at upload; sniffed from Data when empty
	MediaType string
	Data      []byte
}

// ContentType returns the document's media type
func (d Document) ContentType() string {
	if d.MediaType != "" {
		return d.MediaType
	}
	return mimetype.Detect(d.Data).String()
}

// Storage archives documents by key
type Storage interface {
	// Put stores a document and returns its key
	Put(ctx context.Context, doc Document) (string, error)

	// Get opens the document stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a document; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// New creates the storage backend selected by configuration
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case TypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// DocumentKey builds the archive key for a document:
// contracts/<user>/<analysis>_<sanitized file name>
func DocumentKey(doc Document) string {
	name := path.Base(strings.ReplaceAll(doc.FileName, "\\", "/"))
	name = models.SafeFileName(name)
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("contracts/%s/%s_%s", doc.UserID, doc.AnalysisID, name)
}

// validKey rejects keys that could escape the archive root
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return false
		}
	}
	return true
}
