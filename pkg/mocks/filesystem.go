package mocks

import (
	"fmt"
	"sync"

	"github.com/user/twopass/pkg/ports"
)

// FileSystem is an in-memory mock implementation of ports.FileSystem.
type FileSystem struct {
	mu    sync.Mutex
	Files map[string][]byte

	ReadFileFunc  func(path string) ([]byte, error)
	WriteFileFunc func(path string, data []byte) error
}

// NewFileSystem creates an empty in-memory filesystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{Files: make(map[string][]byte)}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return data, nil
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[path] = data
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Files[path]
	return ok, nil
}

func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Files, path)
	return nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
