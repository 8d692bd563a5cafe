package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrSlotEmpty is returned by Slot.Read when nothing has been written yet.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a single key-value cell holding the serialized event list.
// Every write replaces the previous content in full.
type Slot interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Close() error
}

// FileSlot stores the slot content in one JSON file.
type FileSlot struct {
	path            string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// NewFileSlot creates a file-backed slot.
// If path is empty, uses OS-appropriate tmp directory
func NewFileSlot(path string, filePermissions, dirPermissions os.FileMode) *FileSlot {
	if path == "" {
		path = filepath.Join(os.TempDir(), "boleia", "events.json")
	}
	if filePermissions == 0 {
		filePermissions = 0o644
	}
	if dirPermissions == 0 {
		dirPermissions = 0o755
	}
	return &FileSlot{
		path:            path,
		filePermissions: filePermissions,
		dirPermissions:  dirPermissions,
	}
}

// Path returns the backing file path.
func (f *FileSlot) Path() string {
	return f.path
}

// Read returns the file content, or ErrSlotEmpty if the file does not exist.
func (f *FileSlot) Read() ([]byte, error) {
	// Clean up any stale temp files from previous crashes
	tempPath := f.path + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrSlotEmpty
	}
	return data, nil
}

// Write replaces the file content atomically (temp file + rename).
func (f *FileSlot) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), f.dirPermissions); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, f.filePermissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Close is a no-op for files.
func (f *FileSlot) Close() error {
	return nil
}

// MemorySlot keeps the slot content in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemorySlot) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data[:0:0], data...)
	return nil
}

func (m *MemorySlot) Close() error {
	return nil
}
