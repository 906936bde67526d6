package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type FileStore struct {
	Root    string
	BaseURL string
}

func NewFileStore(root, baseURL string) *FileStore {
	return &FileStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *FileStore) Save(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.BaseURL + "/" + name, nil
}

// Delete удаляет файл по URL, который вернул Save. Чужие URL игнорируются.
func (s *FileStore) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok || name == "" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
