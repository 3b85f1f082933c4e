package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/minestax-uz/web/pkg/sdk"
)

const credentialsFile = "credentials.json"

// FileStore implements sdk.CredentialStore using a JSON file of slots.
// This is the CLI's default credential persistence implementation.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// Ensure FileStore implements sdk.CredentialStore at compile time.
var _ sdk.CredentialStore = (*FileStore)(nil)

// NewFileStore creates a FileStore in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
	}
	return &FileStore{
		path: filepath.Join(dir, credentialsFile),
	}, nil
}

// Path is the location of the credentials file.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads a slot.
func (s *FileStore) Get(_ context.Context, slot string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := slots[slot]
	if !ok || v == "" {
		return "", sdk.ErrSlotEmpty
	}
	return v, nil
}

// Set writes a slot.
func (s *FileStore) Set(_ context.Context, slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return err
	}
	slots[slot] = value
	return s.save(slots)
}

// Delete removes a slot. The file is removed with its last slot.
func (s *FileStore) Delete(_ context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := slots[slot]; !ok {
		return nil
	}
	delete(slots, slot)
	if len(slots) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete credentials file: %w", err)
		}
		return nil
	}
	return s.save(slots)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	slots := map[string]string{}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return slots, nil
}

func (s *FileStore) save(slots map[string]string) error {
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}
