package upload

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"evently/internal/domain"
)

// LocalStore writes uploads to a local directory.
type LocalStore struct {
	dir       string
	publicURL string
}

// NewLocalStore returns an uploader that writes files under dir and serves them
// from publicURL. The directory is created on first use.
func NewLocalStore(dir, publicURL string) *LocalStore {
	return &LocalStore{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *LocalStore) Upload(ctx context.Context, files []domain.StagedFile) ([]domain.UploadedAsset, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	assets := make([]domain.UploadedAsset, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := uuid.NewString() + extension(f)
		if err := os.WriteFile(filepath.Join(s.dir, key), f.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		assets = append(assets, domain.UploadedAsset{
			URL:  s.publicURL + "/" + key,
			Key:  key,
			Name: f.Name,
			Size: int64(len(f.Data)),
		})
	}
	return assets, nil
}

// extension keeps the original file extension, or derives one from the content type.
func extension(f domain.StagedFile) string {
	if ext := strings.ToLower(filepath.Ext(f.Name)); ext != "" && !strings.ContainsAny(ext, `/\`) {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType(f)); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
