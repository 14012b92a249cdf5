// Package document stores the files clients attach to their orders.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
)

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

var (
	ErrInvalidOrderID       = errors.New("invalid_order_id")
	ErrInvalidFilename      = errors.New("invalid_filename")
	ErrUnsupportedExtension = errors.New("unsupported_file_extension")
	ErrEmptyFile            = errors.New("empty_file")
)

type StoredFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

type Storage interface {
	Save(ctx context.Context, dir, originalName string, r io.Reader) (StoredFile, error)
}

// LocalStorage writes files under root/<dir>/.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) Save(ctx context.Context, dir, originalName string, r io.Reader) (StoredFile, error) {
	name, err := storedName(originalName)
	if err != nil {
		return StoredFile{}, err
	}
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}

	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(target, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload file: %w", err)
	}
	size, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr == nil && size == 0 {
		copyErr = ErrEmptyFile
	}
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return StoredFile{}, copyErr
		}
		return StoredFile{}, closeErr
	}

	return StoredFile{
		Filename:     name,
		OriginalName: filepath.Base(originalName),
		Path:         path,
		Size:         size,
	}, nil
}

// storedName keeps the extension and a slug of the stem behind a ulid so
// names never collide and never escape the order directory.
func storedName(originalName string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(originalName), "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return "", ErrInvalidFilename
	}
	ext := strings.ToLower(filepath.Ext(base))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedExtension
	}

	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "document"
	}
	return fmt.Sprintf("%s-%s%s", strings.ToLower(ulid.Make().String()), stem, ext), nil
}
