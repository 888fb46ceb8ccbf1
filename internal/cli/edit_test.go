package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEdit_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - key: name\n    value: \"\"\n"), 0644))

	out := &bytes.Buffer{}
	err := RunEdit(context.Background(), EditOptions{
		DefinitionPath: path,
		In:             strings.NewReader("name=Ada\nreset\n"),
		Out:            out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "[profile]")
	assert.Contains(t, text, `* name = "Ada"`)
	assert.Contains(t, text, "dirty=true saveable=true")
}

func TestRunEdit_MissingDefinition(t *testing.T) {
	err := RunEdit(context.Background(), EditOptions{
		DefinitionPath: filepath.Join(t.TempDir(), "nope.yaml"),
		In:             strings.NewReader(""),
		Out:            &bytes.Buffer{},
	})
	assert.Error(t, err)
}

func TestSessions_Edit_JSON(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBackend(ctx, StoreOptions{Kind: "memory"})
	require.NoError(t, err)
	defer b.Close()

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - key: name\n    value: \"\"\n"), 0644))

	setup := NewSessions(b, &bytes.Buffer{}, false, true)
	require.NoError(t, setup.Create(ctx, path, "s1"))

	out := &bytes.Buffer{}
	s := NewSessions(b, out, false, true)
	require.NoError(t, s.Edit(ctx, "s1", strings.NewReader(`{"op":"set","key":"name","value":"Ada"}`+"\n")))

	var last runner.FormEvent
	dec := json.NewDecoder(out)
	for dec.More() {
		require.NoError(t, dec.Decode(&last))
	}
	assert.True(t, last.IsDirty)

	stored, err := s.Manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.String("Ada"), stored.State.Data["name"].Value)
}
