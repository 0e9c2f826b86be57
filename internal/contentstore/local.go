package contentstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
)

type localConfig struct {
	Dir string `json:"dir"`
}

// localStore serves chapters from a flat directory of <chapter-id>.md files.
type localStore struct {
	dir string
}

func init() {
	register("local", func(data interface{}) (Store, error) {
		cfg := &localConfig{}
		if err := decodeConfig(data, cfg); err != nil {
			return nil, err
		}
		if cfg.Dir == "" {
			return nil, fmt.Errorf("local content store requires dir")
		}
		return &localStore{dir: cfg.Dir}, nil
	})
}

func (s *localStore) Read(ctx context.Context, chapterID string) ([]byte, error) {
	if strings.ContainsAny(chapterID, `/\`) || chapterID == "" {
		return nil, fmt.Errorf("invalid chapter id: %w", appErr.ErrInvalid)
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, chapterID+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("chapter %s: %w", chapterID, appErr.ErrNotFound)
		}
		return nil, err
	}
	return raw, nil
}

func (s *localStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".md"))
	}
	return ids, nil
}
