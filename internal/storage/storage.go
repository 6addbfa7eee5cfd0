// Package storage keeps the supporting documents uploaded with a group
// registration. Contents are stored as given; nothing here inspects them.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/chama-dev/chama/backend/internal/config"
	"github.com/chama-dev/chama/backend/internal/domain"
)

type DocumentStore interface {
	// StoreDocument saves the content and returns the document id.
	StoreDocument(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// NewDocumentStore picks the backend named by DOCUMENTS_BACKEND.
func NewDocumentStore(cfg *config.Config) (DocumentStore, error) {
	switch cfg.Documents.Backend {
	case "local":
		return NewLocalStore(cfg.Documents.LocalDir)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown documents backend %q", cfg.Documents.Backend)
	}
}

// documentID derives a fresh id that keeps the original extension.
func documentID(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if len(ext) > 10 || strings.ContainsAny(ext, " /") {
		ext = ""
	}
	return domain.NewID() + ext
}
