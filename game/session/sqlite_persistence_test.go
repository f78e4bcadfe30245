package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLitePersistence(t *testing.T) {
	configs := newConfigManager(t)
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := NewSQLitePersistence(path, configs)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	testPersistenceContract(t, store, configs)

	t.Run("reopen keeps rows", func(t *testing.T) {
		require.NoError(t, store.Save(newTestSession(t, configs, "durable", 3)))
		require.NoError(t, store.Close())

		reopened, err := NewSQLitePersistence(path, configs)
		require.NoError(t, err)
		t.Cleanup(func() { reopened.Close() })

		assert.True(t, reopened.Exists("durable"))
		loaded, err := reopened.Load("durable")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), loaded.Engine.GetState().Seed)
	})
}

func TestNewSQLitePersistence_EmptyPath(t *testing.T) {
	_, err := NewSQLitePersistence("  ", newConfigManager(t))
	assert.Error(t, err)
}

func TestSQLitePersistence_CloseNil(t *testing.T) {
	var sp *SQLitePersistence
	assert.NoError(t, sp.Close())
}
