package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sess := &domain.Session{ID: "a", State: domain.NewFormState(map[string]domain.FieldState{
		"x": {Value: domain.Number(1), InitialValue: domain.Number(1)},
	})}

	require.NoError(t, store.Save(ctx, "a", sess))
	sess.State.Data["x"] = domain.FieldState{Value: domain.Number(2)}

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(1), loaded.State.Data["x"].Value)

	loaded.State.Data["y"] = domain.FieldState{}
	again, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.False(t, again.State.Has("y"))
}

func TestMemoryStore_EmptyID(t *testing.T) {
	assert.Error(t, memory.NewStore().Save(context.Background(), "", &domain.Session{}))
}
