package mocks

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mediaforge/mediaforge/internal/storage"
)

// ObjectStore is an in-memory object store double. It reproduces the
// behaviors the services depend on: sanitized keys, collision suffixes,
// typed not-found errors on delete, and directory-style listings.
type ObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// DeleteErr, when set, is returned by Delete instead of deleting.
	DeleteErr error
}

// NewObjectStore creates an empty in-memory object store
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string][]byte)}
}

// Put seeds an object directly, bypassing sanitization
func (s *ObjectStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

// Get returns a stored object's bytes
func (s *ObjectStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len returns the number of stored objects
func (s *ObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// List lists the direct children of a prefix
func (s *ObjectStore) List(_ context.Context, prefix string) ([]storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix = storage.NormalizePath(prefix)
	if prefix != "" {
		prefix += "/"
	}
	seenDirs := make(map[string]bool)
	var dirs, files []storage.Object
	for key, data := range s.objects {
		if !strings.HasPrefix(key, prefix) || key == prefix {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			dir := prefix + rest[:i]
			if !seenDirs[dir] {
				seenDirs[dir] = true
				dirs = append(dirs, storage.Object{Key: dir, Kind: storage.ObjectKindDirectory})
			}
			continue
		}
		files = append(files, storage.Object{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: time.Now(),
			Kind:         storage.ObjectKindFile,
			Extension:    strings.TrimPrefix(path.Ext(key), "."),
		})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Key < dirs[j].Key })
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return append(dirs, files...), nil
}

// Upload stores data under a sanitized, collision-free key
func (s *ObjectStore) Upload(_ context.Context, data []byte, fileName, _ string, destPath string) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := storage.SanitizeFileName(fileName)
	dir := storage.NormalizePath(destPath)
	join := func(n string) string {
		if dir == "" {
			return n
		}
		return dir + "/" + n
	}

	key := join(name)
	if _, exists := s.objects[key]; exists {
		ext := path.Ext(name)
		base := strings.TrimSuffix(name, ext)
		for i := 1; ; i++ {
			candidate := join(fmt.Sprintf("%s_%d%s", base, i, ext))
			if _, exists := s.objects[candidate]; !exists {
				key = candidate
				break
			}
		}
	}

	s.objects[key] = data
	return &storage.UploadResult{
		ExternalURL:       "https://store.test/bucket/" + key,
		StoreRelativePath: key,
	}, nil
}

// Download returns a stored object's bytes
func (s *ObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, &storage.Error{Kind: storage.KindNotFound, Op: "download", Err: fmt.Errorf("no such key %q", key)}
	}
	return data, nil
}

// Delete removes a stored object, returning a typed not-found error when absent
func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.objects[key]; !ok {
		return &storage.Error{Kind: storage.KindNotFound, Op: "delete", Err: fmt.Errorf("no such key %q", key)}
	}
	delete(s.objects, key)
	return nil
}

// CreateFolder stores a zero-byte directory marker
func (s *ObjectStore) CreateFolder(_ context.Context, folderPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storage.NormalizePath(folderPath)+"/"] = nil
	return nil
}
