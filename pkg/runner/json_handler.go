package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// JSONHandler implements the IOHandler interface for newline-delimited JSON.
// Each input line is an object with a "command" field; each reply is one line.
type JSONHandler struct {
	pump *linePump

	mu      sync.Mutex
	encoder *json.Encoder
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
		pump:    newLinePump(r),
		encoder: json.NewEncoder(w),
	}
}

// Close stops the background reader. The underlying io.Reader is left open.
func (h *JSONHandler) Close() error {
	h.pump.stop()
	return nil
}

func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	line, err := h.pump.next(ctx)
	if err != nil {
		return Command{}, err
	}
	cmd, err := decodeCommand([]byte(line))
	if err != nil {
		return Command{}, &InputError{Line: truncate(line), Err: err}
	}
	return cmd, nil
}

func decodeCommand(line []byte) (Command, error) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Command{}, err
	}
	var cmd Command
	if err := mapstructure.Decode(raw, &cmd); err != nil {
		return Command{}, err
	}
	if cmd.Name == "" {
		return Command{}, ErrMissingCommand
	}
	if len(cmd.Args) == 0 {
		cmd.Args = nil
	}
	return cmd, nil
}

func (h *JSONHandler) Output(ctx context.Context, reply Reply) error {
	return h.emit(reply)
}

// SystemOutput emits {"system": msg}. Clients tell it from replies by the missing
// "command" field.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(struct {
		System string `json:"system"`
	}{msg})
}

// Event writes an asynchronous session notification as {"event": type, "data": ...}.
func (h *JSONHandler) Event(eventType string, data any) error {
	return h.emit(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{eventType, data})
}

func (h *JSONHandler) emit(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(v)
}
