package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/subboxer/internal/config"
	"github.com/aretw0/subboxer/internal/presentation/tui"
	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// TextHandler implements the interactive text interface: one whitespace-separated command
// per line, human-readable replies.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer

	pump    *linePump
	profile termenv.Profile
	prompt  bool
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the markdown renderer used for help.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerProfile sets the colour profile of status lines.
func WithTextHandlerProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.profile = p
	}
}

// WithTextHandlerPrompt prints a "> " prompt before every read.
func WithTextHandlerPrompt(enabled bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.prompt = enabled
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
		Writer:  w,
		pump:    newLinePump(r),
		profile: termenv.Ascii,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Close stops the background reader. The underlying io.Reader is left open.
func (h *TextHandler) Close() error {
	h.pump.stop()
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	if h.prompt && ctx.Err() == nil {
		fmt.Fprint(h.Writer, "> ")
	}
	line, err := h.pump.next(ctx)
	if err != nil {
		return Command{}, err
	}
	cmd, err := ParseText(line)
	if err != nil {
		return Command{}, &InputError{Line: truncate(line), Err: err}
	}
	return cmd, nil
}

func (h *TextHandler) Output(ctx context.Context, reply Reply) error {
	if !reply.OK {
		_, err := fmt.Fprintf(h.Writer, "error: %s\n", reply.Error)
		return err
	}
	text, err := h.format(reply.Data)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	_, err = fmt.Fprintln(h.Writer, strings.TrimRight(text, "\n"))
	return err
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[subboxer] %s\n", msg)
	return err
}

func (h *TextHandler) format(data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "", nil
	case runtime.Status:
		return tui.StatusLine(h.profile, v), nil
	case Listing:
		lines := make([]string, 0, len(v.Subparticles))
		for _, p := range v.Subparticles {
			lines = append(lines, tui.SubparticleLine(h.profile, p, p.ID == v.Active))
		}
		if len(lines) == 0 {
			return "no subparticles", nil
		}
		return strings.Join(lines, "\n"), nil
	case Help:
		if h.Renderer == nil {
			return v.Markdown, nil
		}
		out, err := h.Renderer(v.Markdown)
		if err != nil {
			return v.Markdown, nil
		}
		return out, nil
	case Notice:
		return v.Message, nil
	case ExportResult:
		return fmt.Sprintf("exported %d subparticle(s) to %s", len(v.Records), v.Path), nil
	case config.Config:
		out, err := yaml.Marshal(v)
		return string(out), err
	case domain.Layers:
		return fmt.Sprintf("layers: %d point(s), %d vector(s), active %s",
			len(v.Points), len(v.Vectors), tui.ActiveLabel(v.Active)), nil
	}
	out, err := json.MarshalIndent(data, "", "  ")
	return string(out), err
}

var errUsage = errors.New("usage")

var textUsage = map[string]string{
	"open":    "open <map.mrc> | open <nx> <ny> <nz>",
	"mode":    "mode <add|z|rotate>",
	"press":   "press <x> <y> <z> [<vx> <vy> <vz>] [alt]",
	"move":    "move <x> <y> <z> [<vx> <vy> <vz>] [alt]",
	"release": "release <x> <y> <z> [<vx> <vy> <vz>] [alt]",
	"key":     "key <key>",
	"select":  "select <id>",
	"camera":  "camera [<cx> <cy> <cz>] <vx> <vy> <vz>",
	"export":  "export [path]",
	"config":  "config [key=value ...]",
}

// ParseText turns one text line into a Command. Arguments are passed through as strings;
// they are converted when the command is dispatched.
func ParseText(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrMissingCommand
	}
	name, rest := strings.ToLower(fields[0]), fields[1:]
	usage := func() (Command, error) {
		return Command{}, fmt.Errorf("%w: %s", errUsage, textUsage[name])
	}

	args := map[string]any{}
	switch name {
	case "open":
		switch len(rest) {
		case 1:
			args["path"] = rest[0]
		case 3:
			args["shape"] = rest
		default:
			return usage()
		}
	case "mode", "key":
		if len(rest) != 1 {
			return usage()
		}
		args[name] = rest[0]
	case "select":
		if len(rest) != 1 {
			return usage()
		}
		args["id"] = rest[0]
	case "press", "move", "release":
		var nums []string
		var mods []string
		for _, f := range rest {
			if strings.EqualFold(f, domain.ModifierAlt) {
				mods = append(mods, domain.ModifierAlt)
				continue
			}
			nums = append(nums, f)
		}
		switch len(nums) {
		case 3:
			args["position"] = nums
		case 6:
			args["position"], args["view_direction"] = nums[:3], nums[3:]
		default:
			return usage()
		}
		if len(mods) > 0 {
			args["modifiers"] = mods
		}
	case "camera":
		switch len(rest) {
		case 3:
			args["view_direction"] = rest
		case 6:
			args["center"], args["view_direction"] = rest[:3], rest[3:]
		default:
			return usage()
		}
	case "export":
		switch len(rest) {
		case 0:
		case 1:
			args["path"] = rest[0]
		default:
			return usage()
		}
	case "config":
		for _, kv := range rest {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return usage()
			}
			if strings.Contains(v, ",") {
				args[k] = strings.Split(v, ",")
			} else {
				args[k] = v
			}
		}
	default:
		if len(rest) > 0 {
			return Command{}, fmt.Errorf("%s takes no arguments", name)
		}
	}
	if len(args) == 0 {
		args = nil
	}
	return Command{Name: name, Args: args}, nil
}
