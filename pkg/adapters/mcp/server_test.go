package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/registry"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactYAML = `
name: contact
fields:
  - key: name
    value: ""
  - key: phone
    value: "555"
    initial_value_is_ok: true
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(session.NewManager(memory.NewStore()), WithIDGenerator(func() string { return "form-1" }))
}

func create(t *testing.T, s *Server) FormResult {
	t.Helper()
	res, err := s.handleCreateForm(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"definition": contactYAML,
		"format":     "yaml",
	})
	require.NoError(t, err)
	return res
}

func TestServer_CreateAndGet(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	created := create(t, s)
	assert.Equal(t, "form-1", created.ID)
	assert.Equal(t, "contact", created.Name)
	assert.False(t, created.IsDirty)
	assert.False(t, created.IsSaveable)
	require.NotNil(t, created.Diff)

	got, err := s.handleGetForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{"form_id": "form-1"})
	require.NoError(t, err)
	assert.Equal(t, created.Values, got.Values)

	_, err = s.handleGetForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{"form_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	list, err := s.handleListForms(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"form-1"}, list.IDs)
}

func TestServer_CreateInvalid(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleCreateForm(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"definition": `{"fields": [{"key": ""}]}`,
	})
	assert.Error(t, err)
}

func TestServer_ChangeValue(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	create(t, s)

	res, err := s.handleChangeValue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1",
		"key":     "name",
		"value":   `"Ada"`,
	})
	require.NoError(t, err)
	assert.True(t, res.IsDirty)
	assert.True(t, res.IsSaveable)
	require.NotNil(t, res.Diff)
	assert.Equal(t, domain.String("Ada"), res.Diff.Values["name"])

	res, err = s.handleChangeValue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1",
		"key":     "phone",
		"value":   `555`,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Number(555), res.Values["phone"])

	_, err = s.handleChangeValue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1",
		"key":     "ghost",
		"value":   `1`,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	_, err = s.handleChangeValue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1",
		"key":     "name",
		"value":   `{"a": 1}`,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestServer_ResetAndReinitialize(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	create(t, s)

	_, err := s.handleChangeValue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1", "key": "name", "value": `"Ada"`,
	})
	require.NoError(t, err)

	res, err := s.handleReset(ctx, mcp.CallToolRequest{}, map[string]interface{}{"form_id": "form-1"})
	require.NoError(t, err)
	assert.False(t, res.IsDirty)
	assert.Equal(t, domain.String(""), res.Values["name"])

	res, err = s.handleReinitialize(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1",
		"values":  `{"name": "Grace"}`,
	})
	require.NoError(t, err)
	assert.False(t, res.IsDirty)
	assert.Equal(t, domain.String("Grace"), res.Diff.Baselines["name"])

	_, err = s.handleReinitialize(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1",
		"values":  `[1, 2]`,
	})
	assert.Error(t, err)
}

func TestServer_Delete(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	create(t, s)

	res, err := s.handleDeleteForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{"form_id": "form-1"})
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	list, err := s.handleListForms(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, list.IDs)

	_, err = s.handleDeleteForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	s := NewServer(session.NewManager(memory.NewStore()))
	assert.NotNil(t, s.MCPServer())
	assert.NotEmpty(t, s.newID())
}

func TestServer_ChangeValueSanitizes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	create(t, s)

	res, err := s.handleChangeValue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1", "key": "name", "value": `"Ada\u0007"`,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.String("Ada"), res.Values["name"])
}

func TestServer_CreateFromTemplate(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("login", domain.FormDefinition{
		Fields: []domain.FieldDescriptor{{Key: "user", Value: domain.String("")}},
	})
	s := NewServer(session.NewManager(memory.NewStore()),
		WithRegistry(reg),
		WithIDGenerator(func() string { return "form-1" }),
	)
	ctx := context.Background()

	res, err := s.handleCreateForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{"template": "login"})
	require.NoError(t, err)
	assert.Equal(t, "login", res.Name)

	_, err = s.handleCreateForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{"template": "missing"})
	assert.ErrorIs(t, err, registry.ErrNotFound)

	_, err = s.handleCreateForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)

	_, err = newTestServer(t).handleCreateForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{"template": "login"})
	assert.Error(t, err)
}

func TestServer_ReinitializeUnknownKeys(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	create(t, s)

	res, err := s.handleReinitialize(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"form_id": "form-1",
		"values":  `{"name": "Linus", "ghost": 1}`,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Equal(t, "form-1", res.ID)
	assert.Equal(t, domain.String("Linus"), res.Values["name"])
	assert.NotContains(t, res.Values, "ghost")

	got, err := s.handleGetForm(ctx, mcp.CallToolRequest{}, map[string]interface{}{"form_id": "form-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.String("Linus"), got.Values["name"], "known keys are stored")
}

func TestFormToolHandler(t *testing.T) {
	s := newTestServer(t)
	create(t, s)
	handler := formToolHandler(s.handleReinitialize)

	call := func(args map[string]interface{}) *mcp.CallToolResult {
		t.Helper()
		var req mcp.CallToolRequest
		req.Params.Name = "reinitialize_form"
		req.Params.Arguments = args
		res, err := handler(context.Background(), req)
		require.NoError(t, err)
		return res
	}

	res := call(map[string]interface{}{"form_id": "form-1", "values": `{"name": "Grace"}`})
	assert.False(t, res.IsError)
	form, ok := res.StructuredContent.(FormResult)
	require.True(t, ok)
	assert.Equal(t, domain.String("Grace"), form.Values["name"])

	res = call(map[string]interface{}{"form_id": "form-1", "values": `{"name": "Ada", "ghost": 1}`})
	assert.True(t, res.IsError)
	form, ok = res.StructuredContent.(FormResult)
	require.True(t, ok, "partial reinitialization still reports the form")
	assert.Equal(t, domain.String("Ada"), form.Values["name"])
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "ghost")

	res = call(map[string]interface{}{"form_id": "missing", "values": `{"name": "Ada"}`})
	assert.True(t, res.IsError)
	assert.Nil(t, res.StructuredContent)
}
