package sdk

import (
	"context"
	"errors"
	"sync"
)

// Slot names of the durable credential store. Both slots are written together
// at login and cleared together at logout or refresh failure.
const (
	SlotAccessToken  = "accessToken"
	SlotRefreshToken = "refreshToken"
)

// ErrSlotEmpty is returned by CredentialStore.Get when the slot holds no value.
var ErrSlotEmpty = errors.New("credential slot is empty")

// Credentials is the access/refresh token pair.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CredentialStore persists the two token slots across restarts of the client.
// Implementations must be safe for concurrent use.
type CredentialStore interface {
	Get(ctx context.Context, slot string) (string, error)
	Set(ctx context.Context, slot, value string) error
	Delete(ctx context.Context, slot string) error
}

// LoadCredentials reads both slots. A pair with only one half present is
// reported as absent.
func LoadCredentials(ctx context.Context, store CredentialStore) (*Credentials, error) {
	access, err := store.Get(ctx, SlotAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := store.Get(ctx, SlotRefreshToken)
	if err != nil {
		return nil, err
	}
	return &Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// SaveCredentials writes both slots.
func SaveCredentials(ctx context.Context, store CredentialStore, creds *Credentials) error {
	if err := store.Set(ctx, SlotAccessToken, creds.AccessToken); err != nil {
		return err
	}
	return store.Set(ctx, SlotRefreshToken, creds.RefreshToken)
}

// ClearCredentials deletes both slots. Deleting an empty slot is not an error.
func ClearCredentials(ctx context.Context, store CredentialStore) error {
	return errors.Join(
		store.Delete(ctx, SlotAccessToken),
		store.Delete(ctx, SlotRefreshToken),
	)
}

// MemoryStore is an in-process CredentialStore.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

var _ CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, slot string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[slot]
	if !ok || v == "" {
		return "", ErrSlotEmpty
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	return nil
}

// Len reports how many slots hold a value.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}
