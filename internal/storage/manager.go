package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/th2-export/backend/internal/models"
)

const (
	exportExt = ".th2"
	indexFile = "index.yaml"
)

// ErrNotFound is returned for unknown export ids.
var ErrNotFound = errors.New("export not found")

// Store defines the interface for exported drawing storage.
type Store interface {
	Save(name string, r io.Reader) (*models.FileInfo, error)
	SaveBytes(name string, data []byte) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(id string) error
	Rename(id string, newName string) (*models.FileInfo, error)
	GetFilePath(id string) (string, error)
}

// LocalStore implements Store using the local filesystem. When persistent,
// the metadata index is kept in index.yaml next to the drawings.
type LocalStore struct {
	mu         sync.RWMutex
	exportDir  string
	persistent bool
	files      map[string]*models.FileInfo
}

// indexEntry is the on-disk form of one FileInfo.
type indexEntry struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Size      int64     `yaml:"size"`
	CreatedAt time.Time `yaml:"created_at"`
}

// NewLocalStore creates a new LocalStore that keeps its index in memory only.
func NewLocalStore(exportDir string) (*LocalStore, error) {
	return newLocalStore(exportDir, false)
}

// OpenLocalStore creates a LocalStore whose index survives restarts.
func OpenLocalStore(exportDir string) (*LocalStore, error) {
	return newLocalStore(exportDir, true)
}

func newLocalStore(exportDir string, persistent bool) (*LocalStore, error) {
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	s := &LocalStore{
		exportDir:  exportDir,
		persistent: persistent,
		files:      make(map[string]*models.FileInfo),
	}
	if persistent {
		if err := s.loadIndex(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save saves an exported drawing to the local filesystem.
func (s *LocalStore) Save(name string, r io.Reader) (*models.FileInfo, error) {
	id := uuid.New().String()
	path := s.pathFor(id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:        id,
		Name:      name,
		Size:      size,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	if err := s.saveIndexLocked(); err != nil {
		delete(s.files, id)
		os.Remove(path)
		return nil, err
	}
	return copyInfo(info), nil
}

// SaveBytes saves an in-memory drawing.
func (s *LocalStore) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	return s.Save(name, bytes.NewReader(data))
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return copyInfo(info), nil
}

// List returns the most recent exports.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.FileInfo
	for _, info := range s.files {
		list = append(list, copyInfo(info))
	}

	// Sort by CreatedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes an export from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := os.Remove(s.pathFor(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return s.saveIndexLocked()
}

// Rename updates the display name of an export.
func (s *LocalStore) Rename(id string, newName string) (*models.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	oldName := info.Name
	info.Name = newName
	if err := s.saveIndexLocked(); err != nil {
		info.Name = oldName
		return nil, err
	}
	return copyInfo(info), nil
}

// GetFilePath returns the absolute path to an export.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return s.pathFor(id), nil
}

// copyInfo detaches returned metadata from the index; s.mu must be held.
func copyInfo(info *models.FileInfo) *models.FileInfo {
	cp := *info
	return &cp
}

func (s *LocalStore) pathFor(id string) string {
	return filepath.Join(s.exportDir, id+exportExt)
}

func (s *LocalStore) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(s.exportDir, indexFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	var entries []indexEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing index: %w", err)
	}
	for _, e := range entries {
		// drop entries whose drawing was removed behind our back
		if _, err := os.Stat(s.pathFor(e.ID)); err != nil {
			continue
		}
		s.files[e.ID] = &models.FileInfo{ID: e.ID, Name: e.Name, Size: e.Size, CreatedAt: e.CreatedAt}
	}
	return nil
}

// saveIndexLocked writes the index; s.mu must be held.
func (s *LocalStore) saveIndexLocked() error {
	if !s.persistent {
		return nil
	}

	entries := make([]indexEntry, 0, len(s.files))
	for _, info := range s.files {
		entries = append(entries, indexEntry{ID: info.ID, Name: info.Name, Size: info.Size, CreatedAt: info.CreatedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	tmp := filepath.Join(s.exportDir, indexFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.exportDir, indexFile)); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}
