package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Prompt   string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithPrompt replaces the default "> " prompt.
func WithPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:   bufio.NewReader(r),
		Writer:   w,
		Renderer: PlainRenderer,
		Prompt:   "> ",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts the goroutine that reads lines, so Input can honour
// context cancellation while a read is blocked.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go func() {
			for {
				text, err := h.Reader.ReadString('\n')
				if err != nil && (err != io.EOF || text == "") {
					h.inputChan <- inputResult{err: err}
					close(h.inputChan)
					return
				}
				h.inputChan <- inputResult{text: text}
			}
		}()
	})
}

func (h *TextHandler) Output(ctx context.Context, view View) error {
	out, err := h.Renderer(view)
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
	if view.Err != nil {
		fmt.Fprintf(h.Writer, "Error: %v\n", view.Err)
	}
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	h.initPump()
	fmt.Fprint(h.Writer, h.Prompt)

	select {
	case <-ctx.Done():
		return Command{}, ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return Command{}, io.EOF
		}
		if res.err != nil {
			return Command{}, res.err
		}
		cmd, err := ParseCommand(res.text)
		if err != nil {
			return Command{}, &ParseError{Input: strings.TrimSpace(res.text), Err: err}
		}
		return cmd, nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, ">>> %s\n", msg)
	return err
}

// PlainRenderer lists every field with its baseline, marking changed fields.
func PlainRenderer(view View) (string, error) {
	var b strings.Builder
	if view.Name != "" {
		fmt.Fprintf(&b, "[%s]\n", view.Name)
	}
	for _, key := range view.State.Keys() {
		f := view.State.Data[key]
		mark := " "
		if f.Value != f.InitialValue {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s %s = %s (baseline %s)\n", mark, key, f.Value, f.InitialValue)
	}
	fmt.Fprintf(&b, "dirty=%v saveable=%v", view.State.IsDirty, view.State.IsSaveable)
	return b.String(), nil
}
