package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware([]string{"password", "^ssn$"})(underlyingStore)

	ctx := context.Background()
	sessionID := "pii-session"
	sess := secretSession(sessionID)

	require.NoError(t, secureStore.Save(ctx, sessionID, sess))
	assert.Equal(t, domain.String("secret123"), sess.State.Data["user_password"].Value, "caller's session is not modified")

	stored, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, domain.String("jdoe"), stored.State.Data["username"].Value)
	assert.Equal(t, middleware.Mask, stored.State.Data["user_password"].Value)
	assert.Equal(t, middleware.Mask, stored.State.Data["ssn"].Value)
	assert.Equal(t, middleware.Mask, stored.State.Data["ssn"].InitialValue)
}

func TestPIIMiddleware_KeepsFlags(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware([]string{"password", "ssn"})(underlyingStore)
	ctx := context.Background()

	require.NoError(t, secureStore.Save(ctx, "s", secretSession("s")))
	stored, err := secureStore.Load(ctx, "s")
	require.NoError(t, err)

	restored := formstate.Restore(stored)
	assert.True(t, restored.IsDirty(), "changed password stays changed")
	assert.True(t, restored.IsSaveable())
}
