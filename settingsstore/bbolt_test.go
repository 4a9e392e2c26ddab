package settingsstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBboltStoreSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := NewBboltStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "spec-a", []byte(`[{"name":"x"}]`)))

	data, found, err := store.Load(ctx, "spec-a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"name":"x"}]`, string(data))
}

func TestBboltStoreLoadMissingKeyReportsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := NewBboltStore(path)
	require.NoError(t, err)
	defer store.Close()

	data, found, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestBboltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := NewBboltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "k", []byte("v")))
	require.NoError(t, store.Close())

	reopened, err := NewBboltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, found, err := reopened.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", string(data))
}
