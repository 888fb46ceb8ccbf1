package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) (*Sessions, *bytes.Buffer) {
	t.Helper()
	b, err := OpenBackend(context.Background(), StoreOptions{Kind: StoreFile, Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	var out bytes.Buffer
	return NewSessions(b, &out, false, true), &out
}

func decodeLast(t *testing.T, out *bytes.Buffer) formJSON {
	t.Helper()
	var got formJSON
	dec := json.NewDecoder(out)
	for dec.More() {
		require.NoError(t, dec.Decode(&got))
	}
	return got
}

func TestSessions_Lifecycle(t *testing.T) {
	s, out := newTestSessions(t)
	ctx := context.Background()
	def := writeDefinition(t, "profile.yaml", profileYAML)

	require.NoError(t, s.Create(ctx, def, "s1"))
	got := decodeLast(t, out)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "profile", got.Name)

	err := s.Create(ctx, def, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionExists)

	out.Reset()
	require.NoError(t, s.Set(ctx, "s1", []string{"name=Ada"}))
	got = decodeLast(t, out)
	assert.True(t, got.IsDirty)
	assert.True(t, got.IsSaveable)

	out.Reset()
	require.NoError(t, s.Inspect(ctx, "s1"))
	assert.Equal(t, domain.String("Ada"), decodeLast(t, out).Values["name"])

	out.Reset()
	require.NoError(t, s.Reinitialize(ctx, "s1", []string{"name=Ada"}))
	assert.False(t, decodeLast(t, out).IsDirty)

	out.Reset()
	require.NoError(t, s.Set(ctx, "s1", []string{"name=Grace"}))
	out.Reset()
	require.NoError(t, s.Reset(ctx, "s1"))
	got = decodeLast(t, out)
	assert.Equal(t, domain.String("Ada"), got.Values["name"])
	assert.False(t, got.IsDirty)

	out.Reset()
	require.NoError(t, s.List(ctx))
	var ids []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &ids))
	assert.Equal(t, []string{"s1"}, ids)

	out.Reset()
	require.NoError(t, s.Remove(ctx, []string{"s1"}))
	assert.Contains(t, out.String(), "Removed session 's1'")

	err = s.Inspect(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessions_SetUnknownFieldKeepsEarlierChanges(t *testing.T) {
	s, out := newTestSessions(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, writeDefinition(t, "profile.yaml", profileYAML), "s1"))

	out.Reset()
	err := s.Set(ctx, "s1", []string{"name=Ada", "ghost=1"})
	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Equal(t, domain.String("Ada"), decodeLast(t, out).Values["name"])

	err = s.Set(ctx, "missing", []string{"name=Ada"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessions_CreateGeneratesID(t *testing.T) {
	s, out := newTestSessions(t)
	require.NoError(t, s.Create(context.Background(), writeDefinition(t, "profile.yaml", profileYAML), ""))
	assert.Len(t, decodeLast(t, out).ID, 36)
}

func TestSessions_PlainOutput(t *testing.T) {
	s, out := newTestSessions(t)
	s.JSON = false
	ctx := context.Background()

	require.NoError(t, s.List(ctx))
	assert.Contains(t, out.String(), "No stored sessions found.")

	require.NoError(t, s.Create(ctx, writeDefinition(t, "profile.yaml", profileYAML), "s1"))
	assert.Contains(t, out.String(), ">>> Session 's1' created.")
	assert.Contains(t, out.String(), "# profile (s1)")
}
