package app

import (
	"context"
	"io"
	"sort"
	"sync"
)

// memStore 是测试用的内存存储，记录每次 Exists/Delete 调用。
type memStore struct {
	mu    sync.Mutex
	files map[string][]byte

	existsCalls []string
	deleteCalls []string
	existsErr   error
	deleteErr   error
	putErr      error
}

func newMemStore(paths ...string) *memStore {
	s := &memStore{files: make(map[string][]byte)}
	for _, p := range paths {
		s.files[p] = []byte("x")
	}
	return s
}

func (s *memStore) Exists(ctx context.Context, fullPath string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls = append(s.existsCalls, fullPath)
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.files[fullPath]
	return ok, nil
}

func (s *memStore) Delete(ctx context.Context, fullPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, fullPath)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, fullPath)
	return nil
}

func (s *memStore) Put(ctx context.Context, fullPath string, r io.Reader) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[fullPath] = b
	return nil
}

func (s *memStore) has(fullPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[fullPath]
	return ok
}

func (s *memStore) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
