// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/th2-export/backend/internal/models"
	"github.com/th2-export/backend/internal/storage"
)

// MockStorage implements storage.Store in memory for testing
type MockStorage struct {
	files    map[string]*models.FileInfo
	fileData map[string][]byte
	mu       sync.RWMutex

	// SaveErr, when set, is returned by every save.
	SaveErr error
}

// NewMockStorage creates a new empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, data)
}

func (m *MockStorage) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	return m.AddFile(generateTestID(), name, data), nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	cp := *file
	return &cp, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.FileInfo, 0, len(m.files))
	for _, file := range m.files {
		cp := *file
		files = append(files, &cp)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	file.Name = newName
	cp := *file
	return &cp, nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return "/mock/path/" + id + ".th2", nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile adds a file directly to the mock
func (m *MockStorage) AddFile(id string, name string, data []byte) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	file := &models.FileInfo{
		ID:        id,
		Name:      name,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}
	m.files[id] = file
	m.fileData[id] = data
	return file
}

// GetFileData returns the stored content
func (m *MockStorage) GetFileData(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return data, nil
}

// GetFileCount returns the number of stored files
func (m *MockStorage) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

var testIDCounter int
var testIDMutex sync.Mutex

// generateTestID generates a simple test ID
func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
