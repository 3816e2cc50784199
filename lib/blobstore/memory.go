package blobstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	mu         sync.RWMutex
	objects    map[string]memoryObject
	publicBase string
	bucket     string
}

func NewMemoryStore(publicBase, bucket string) *MemoryStore {
	return &MemoryStore{
		objects:    map[string]memoryObject{},
		publicBase: strings.TrimSuffix(publicBase, "/"),
		bucket:     bucket,
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, key)
}
