package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/sqlite"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*sqlite.Store)(nil)

func tempDB(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, tempDB(t))
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ports.RunStateStoreContract(t, s)
}

func TestSQLiteStore_ListSaveable(t *testing.T) {
	ctx := context.Background()
	s := tempDB(t)

	require.NoError(t, s.Save(ctx, "a", &domain.Session{ID: "a", State: domain.FormState{IsSaveable: true}}))
	require.NoError(t, s.Save(ctx, "b", &domain.Session{ID: "b"}))

	ids, err := s.ListSaveable(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	// Upsert updates the mirrored column.
	require.NoError(t, s.Save(ctx, "a", &domain.Session{ID: "a"}))
	ids, err = s.ListSaveable(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	var name string
	require.NoError(t, s.DB().QueryRow(`SELECT name FROM form_sessions WHERE id = 'b'`).Scan(&name))
	assert.Equal(t, "", name)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "keep", &domain.Session{ID: "keep", Name: "profile"}))
	require.NoError(t, s.Close())

	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()

	sess, err := s.Load(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "profile", sess.Name)
	assert.NotNil(t, sess.State.Data)
}
