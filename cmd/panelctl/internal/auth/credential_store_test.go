package auth

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", ".panel"))
	require.NoError(t, err)

	_, err = store.Get(ctx, sdk.SlotAccessToken)
	assert.ErrorIs(t, err, sdk.ErrSlotEmpty)

	require.NoError(t, sdk.SaveCredentials(ctx, store, &sdk.Credentials{AccessToken: "a1", RefreshToken: "r1"}))

	reopened, err := NewFileStore(filepath.Dir(store.Path()))
	require.NoError(t, err)
	creds, err := sdk.LoadCredentials(ctx, reopened)
	require.NoError(t, err)
	assert.Equal(t, "a1", creds.AccessToken)
	assert.Equal(t, "r1", creds.RefreshToken)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestFileStoreDeleteRemovesFileWithLastSlot(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, sdk.SaveCredentials(ctx, store, &sdk.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, store.Delete(ctx, sdk.SlotAccessToken))
	assert.FileExists(t, store.Path())

	_, err = sdk.LoadCredentials(ctx, store)
	assert.ErrorIs(t, err, sdk.ErrSlotEmpty, "half a pair is reported as absent")

	require.NoError(t, store.Delete(ctx, sdk.SlotRefreshToken))
	assert.NoFileExists(t, store.Path())

	require.NoError(t, sdk.ClearCredentials(ctx, store), "clearing an empty store is not an error")
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0600))

	_, err = store.Get(ctx, sdk.SlotAccessToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, sdk.ErrSlotEmpty)
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Set(ctx, sdk.SlotAccessToken, "token"))
			_, _ = store.Get(ctx, sdk.SlotAccessToken)
		}()
	}
	wg.Wait()

	v, err := store.Get(ctx, sdk.SlotAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "token", v)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenStore(context.Background(), StoreOptions{Backend: "file", Dir: dir})
	require.NoError(t, err)
	fs, ok := store.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "credentials.json"), fs.Path())

	_, err = OpenStore(context.Background(), StoreOptions{Backend: "vault"})
	assert.ErrorContains(t, err, "unknown credential store backend")
}
