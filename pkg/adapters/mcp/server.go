package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/fields"
	"github.com/aretw0/formstate/pkg/registry"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FormResult is the structured output of every form tool.
type FormResult struct {
	ID         string                  `json:"id" jsonschema_description:"The form session ID"`
	Name       string                  `json:"name,omitempty" jsonschema_description:"The form name"`
	Values     map[string]domain.Value `json:"values" jsonschema_description:"Current value of every field"`
	IsDirty    bool                    `json:"is_dirty" jsonschema_description:"At least one checked field differs from its baseline"`
	IsSaveable bool                    `json:"is_saveable" jsonschema_description:"Every checked field is changed or has an acceptable baseline"`
	Diff       *domain.StateDiff       `json:"diff,omitempty" jsonschema_description:"What the call changed"`
}

// Server exposes form sessions as MCP tools.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
	newID     func() string
	registry  *registry.Registry
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides the session ID source (random UUIDs by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithRegistry lets create_form instantiate named definitions.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("formstate-mcp", strings.TrimSpace(formstate.Version)),
		logger:    logging.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_form",
		mcp.WithDescription("Create a form session from a definition document (fields with key, value and optional initial_value_is_ok, check_for_dirty, check_for_saveable) or from a registered template."),
		mcp.WithString("definition", mcp.Description("The form definition, as JSON or YAML")),
		mcp.WithString("template", mcp.Description("Name of a registered definition, used instead of 'definition'")),
		mcp.WithString("format", mcp.Description("Definition encoding: json (default) or yaml"), mcp.Enum("json", "yaml")),
		mcp.WithOutputSchema[FormResult](),
	), mcp.NewStructuredToolHandler(s.handleCreateForm))

	s.mcpServer.AddTool(mcp.NewTool("get_form",
		mcp.WithDescription("Get the current values and flags of a form session."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form session ID")),
		mcp.WithOutputSchema[FormResult](),
	), mcp.NewStructuredToolHandler(s.handleGetForm))

	s.mcpServer.AddTool(mcp.NewTool("change_value",
		mcp.WithDescription("Set the current value of one field and recompute the dirty and saveable flags."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form session ID")),
		mcp.WithString("key", mcp.Required(), mcp.Description("The field key")),
		mcp.WithString("value", mcp.Required(), mcp.Description(`The new value as a JSON scalar literal, e.g. "\"Ada\"", "42", "true" or "null"`)),
		mcp.WithOutputSchema[FormResult](),
	), formToolHandler(s.handleChangeValue))

	s.mcpServer.AddTool(mcp.NewTool("reset_form",
		mcp.WithDescription("Restore every field to its baseline."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form session ID")),
		mcp.WithOutputSchema[FormResult](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("reinitialize_form",
		mcp.WithDescription("Replace value and baseline of the given fields, e.g. after the record was saved."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form session ID")),
		mcp.WithString("values", mcp.Required(), mcp.Description("JSON object mapping field keys to scalar values")),
		mcp.WithOutputSchema[FormResult](),
	), formToolHandler(s.handleReinitialize))

	s.mcpServer.AddTool(mcp.NewTool("list_forms",
		mcp.WithDescription("List the IDs of all stored form sessions."),
		mcp.WithOutputSchema[ListResult](),
	), mcp.NewStructuredToolHandler(s.handleListForms))

	s.mcpServer.AddTool(mcp.NewTool("delete_form",
		mcp.WithDescription("Delete a form session. Deleting a missing session succeeds."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form session ID")),
		mcp.WithOutputSchema[DeleteResult](),
	), mcp.NewStructuredToolHandler(s.handleDeleteForm))
}

// ListResult is the structured output of list_forms.
type ListResult struct {
	IDs []string `json:"ids" jsonschema_description:"Stored form session IDs, sorted"`
}

// DeleteResult is the structured output of delete_form.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleListForms(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ListResult, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("list failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ListResult{IDs: ids}, nil
}

func (s *Server) handleDeleteForm(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DeleteResult, error) {
	id, _ := args["form_id"].(string)
	if id == "" {
		return DeleteResult{}, errors.New("form_id is required")
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return DeleteResult{}, fmt.Errorf("delete failed: %w", err)
	}
	return DeleteResult{ID: id, Deleted: true}, nil
}

func (s *Server) handleCreateForm(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormResult, error) {
	form, err := s.buildForm(args)
	if err != nil {
		return FormResult{}, err
	}

	sess, err := s.sessions.Create(ctx, s.newID(), form)
	if err != nil {
		return FormResult{}, fmt.Errorf("create failed: %w", err)
	}
	s.logger.Info("MCP: form created", "session_id", sess.ID, "form", sess.Name)
	return newFormResult(sess, domain.Diff(nil, &sess.State)), nil
}

func (s *Server) buildForm(args map[string]interface{}) (*formstate.Form, error) {
	if name, _ := args["template"].(string); name != "" {
		if s.registry == nil {
			return nil, errors.New("no templates are registered")
		}
		return s.registry.New(name)
	}

	raw, _ := args["definition"].(string)
	if raw == "" {
		return nil, errors.New("either definition or template is required")
	}
	format := fields.FormatJSON
	if f, ok := args["format"].(string); ok && f != "" {
		format = fields.Format(f)
	}

	def, err := fields.ParseDefinition([]byte(raw), format)
	if err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	form, err := formstate.FromDefinition(def)
	if err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return form, nil
}

func (s *Server) handleGetForm(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormResult, error) {
	id, _ := args["form_id"].(string)
	sess, err := s.sessions.Load(ctx, id)
	if err != nil {
		return FormResult{}, fmt.Errorf("get failed: %w", err)
	}
	return newFormResult(sess, nil), nil
}

func (s *Server) handleChangeValue(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormResult, error) {
	key, _ := args["key"].(string)
	literal, _ := args["value"].(string)

	var value domain.Value
	if err := json.Unmarshal([]byte(literal), &value); err != nil {
		return FormResult{}, fmt.Errorf("value must be a JSON scalar literal: %w", err)
	}
	value, err := fields.SanitizeValue(value)
	if err != nil {
		s.logger.Warn("MCP: value rejected", "err", err)
		return FormResult{}, fmt.Errorf("value rejected: %w", err)
	}

	return s.apply(ctx, args, func(f *formstate.Form) error {
		return f.ChangeValue(ctx, key, value)
	})
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormResult, error) {
	return s.apply(ctx, args, func(f *formstate.Form) error {
		return f.Reset(ctx)
	})
}

func (s *Server) handleReinitialize(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormResult, error) {
	raw, _ := args["values"].(string)

	var data map[string]domain.Value
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return FormResult{}, fmt.Errorf("values must be a JSON object of scalars: %w", err)
	}
	data, err := fields.SanitizeValues(data)
	if err != nil {
		return FormResult{}, fmt.Errorf("value rejected: %w", err)
	}

	return s.apply(ctx, args, func(f *formstate.Form) error {
		return f.Reinitialize(ctx, data)
	})
}

func (s *Server) apply(ctx context.Context, args map[string]interface{}, fn func(*formstate.Form) error) (FormResult, error) {
	id, _ := args["form_id"].(string)

	var before domain.FormState
	sess, err := s.sessions.Apply(ctx, id, func(f *formstate.Form) error {
		before = f.State()
		return fn(f)
	})
	if sess == nil {
		return FormResult{}, fmt.Errorf("form %q: %w", id, err)
	}
	result := newFormResult(sess, domain.Diff(&before, &sess.State))
	if errors.Is(err, domain.ErrUnknownField) {
		// Known keys were applied and stored; report the form with the error.
		s.logger.Warn("MCP: transition referenced unknown fields", "session_id", id, "err", err)
		return result, err
	}
	if err != nil {
		return FormResult{}, err
	}
	return result, nil
}

// formToolHandler is mcp.NewStructuredToolHandler for tools whose transition
// may be partially applied: when the handler returns a form together with an
// error, the result carries both and is flagged as an error.
func formToolHandler(h func(context.Context, mcp.CallToolRequest, map[string]interface{}) (FormResult, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, request, request.GetArguments())
		if err != nil && result.ID == "" {
			return mcp.NewToolResultError(fmt.Sprintf("tool execution failed: %v", err)), nil
		}

		text, mErr := json.Marshal(result)
		if mErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", mErr)), nil
		}
		if err != nil {
			res := mcp.NewToolResultStructured(result, fmt.Sprintf("%v\n%s", err, text))
			res.IsError = true
			return res, nil
		}
		return mcp.NewToolResultStructured(result, string(text)), nil
	}
}

func newFormResult(sess *domain.Session, diff *domain.StateDiff) FormResult {
	return FormResult{
		ID:         sess.ID,
		Name:       sess.Name,
		Values:     sess.State.Values(),
		IsDirty:    sess.State.IsDirty,
		IsSaveable: sess.State.IsSaveable,
		Diff:       diff,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("formstate://forms", "Stored Form Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "formstate://forms",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
