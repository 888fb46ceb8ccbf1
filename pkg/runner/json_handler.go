package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines
// communication. Each input line is a Command object; each output line is a
// FormEvent.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// FormEvent is one JSON line written by the JSONHandler.
type FormEvent struct {
	Type       string                  `json:"type"`
	ID         string                  `json:"id,omitempty"`
	Name       string                  `json:"name,omitempty"`
	Values     map[string]domain.Value `json:"values,omitempty"`
	IsDirty    bool                    `json:"is_dirty"`
	IsSaveable bool                    `json:"is_saveable"`
	Error      string                  `json:"error,omitempty"`
	Message    string                  `json:"message,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, view View) error {
	event := FormEvent{
		Type:       "form",
		ID:         view.ID,
		Name:       view.Name,
		Values:     view.State.Values(),
		IsDirty:    view.State.IsDirty,
		IsSaveable: view.State.IsSaveable,
	}
	if view.Err != nil {
		event.Error = view.Err.Error()
	}
	return h.Encoder.Encode(event)
}

// Input reads one line. Blank lines are skipped.
func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Command{}, err
		}

		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return Command{}, err
			}
			continue
		}

		var cmd Command
		if jerr := json.Unmarshal([]byte(text), &cmd); jerr != nil {
			return Command{}, &ParseError{Input: text, Err: jerr}
		}
		if !cmd.Op.valid() {
			return Command{}, &ParseError{Input: text, Err: ErrUnknownCommand}
		}
		return cmd, nil
	}
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(FormEvent{Type: "system", Message: msg})
}
