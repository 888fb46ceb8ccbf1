package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("contact", domain.FormDefinition{
		Fields: []domain.FieldDescriptor{{Key: "email", Value: domain.String("")}},
	})
	r.Register("address", domain.FormDefinition{Name: "shipping"})

	assert.Equal(t, []string{"address", "contact"}, r.Names())

	def, err := r.Get("contact")
	require.NoError(t, err)
	assert.Equal(t, "contact", def.Name)

	def, err = r.Get("address")
	require.NoError(t, err)
	assert.Equal(t, "shipping", def.Name)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	form, err := r.New("contact")
	require.NoError(t, err)
	assert.Equal(t, "contact", form.Name)
	require.NoError(t, form.ChangeValue(context.Background(), "email", domain.String("a@b.c")))
	assert.True(t, form.IsDirty())

	_, err = r.New("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

type staticSource struct {
	defs    map[string]domain.FormDefinition
	err     error
	changes chan string
}

func (s *staticSource) Definitions(context.Context) (map[string]domain.FormDefinition, error) {
	return s.defs, s.err
}

func (s *staticSource) Watch(context.Context) (<-chan string, error) {
	return s.changes, nil
}

func TestRegistry_Load(t *testing.T) {
	r := NewRegistry()
	r.Register("stale", domain.FormDefinition{})

	src := &staticSource{defs: map[string]domain.FormDefinition{
		"contact": {Fields: []domain.FieldDescriptor{{Key: "email", Value: domain.String("")}}},
	}}
	require.NoError(t, r.Load(context.Background(), src))
	assert.Equal(t, []string{"contact"}, r.Names())

	def, err := r.Get("contact")
	require.NoError(t, err)
	assert.Equal(t, "contact", def.Name)

	src.err = errors.New("disk gone")
	assert.ErrorContains(t, r.Load(context.Background(), src), "disk gone")
	assert.Equal(t, []string{"contact"}, r.Names(), "failed load keeps previous definitions")
}

func TestRegistry_Watch(t *testing.T) {
	r := NewRegistry()
	src := &staticSource{
		defs:    map[string]domain.FormDefinition{"a": {}},
		changes: make(chan string),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, src, logging.NewNop()) }()

	src.changes <- "a"
	src.changes <- "a"
	assert.Eventually(t, func() bool { return len(r.Names()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	close(src.changes)
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.yaml"), []byte("fields:\n  - key: user\n    value: \"\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signup.json"), []byte(`{"name": "register", "fields": [{"key": "email", "value": ""}]}`), 0644))

	r, loader, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, loader)
	assert.Equal(t, []string{"login", "signup"}, r.Names())

	def, err := r.Get("signup")
	require.NoError(t, err)
	assert.Equal(t, "register", def.Name)

	form, err := r.New("login")
	require.NoError(t, err)
	assert.False(t, form.IsDirty())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"fields": [{"value": 1}]}`), 0644))
	assert.Error(t, r.Load(context.Background(), loader))
	assert.Equal(t, []string{"login", "signup"}, r.Names())

	_, _, err = LoadDir(context.Background(), dir)
	assert.ErrorContains(t, err, "broken")

	_, _, err = LoadDir(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
