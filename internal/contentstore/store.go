package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is the read-side source of truth for chapter markdown. Chapters are
// authored out of band; the service never writes through this interface.
type Store interface {
	Read(ctx context.Context, chapterID string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

type creatorFunc func(data interface{}) (Store, error)

var registry = make(map[string]creatorFunc)

func register(name string, fn creatorFunc) {
	registry[name] = fn
}

func New(typ string, data interface{}) (Store, error) {
	fn, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("content store type not found: %s", typ)
	}
	return fn(data)
}

func decodeConfig(data interface{}, dst interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
