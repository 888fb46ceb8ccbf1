package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := contractSession(sessionID)

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")

		assert.Equal(t, sess.ID, loaded.ID)
		assert.Equal(t, sess.Name, loaded.Name)
		// Values must keep their kind: "1" and 1 are different values.
		assert.Equal(t, sess.State, loaded.State)
		assert.Equal(t, sess.DirtyFieldsToCheck, loaded.DirtyFieldsToCheck)
		assert.Equal(t, []string{}, loaded.SaveableFieldsToCheck, "empty subset must not become nil")
		assert.True(t, sess.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Overwrite", func(t *testing.T) {
		sess := contractSession(sessionID)
		sess.State.Data["name"] = domain.FieldState{Value: domain.String("Grace"), InitialValue: domain.String("")}
		require.NoError(t, store.Save(ctx, sessionID, sess))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.String("Grace"), loaded.State.Data["name"].Value)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, contractSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, contractSession(id1)))
		require.NoError(t, store.Save(ctx, id2, contractSession(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

func contractSession(id string) *domain.Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Session{
		ID:   id,
		Name: "contract",
		State: domain.FormState{
			Data: map[string]domain.FieldState{
				"name":  {Value: domain.String("Ada"), InitialValue: domain.String("")},
				"code":  {Value: domain.String("1"), InitialValue: domain.Number(1)},
				"agree": {Value: domain.Bool(false), InitialValue: domain.Null(), InitialValueIsOk: true},
			},
			IsDirty:    true,
			IsSaveable: true,
		},
		DirtyFieldsToCheck:    []string{"name", "code"},
		SaveableFieldsToCheck: []string{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
