package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/subboxer/internal/presentation/tui"
	"github.com/aretw0/subboxer/pkg/bridge"
	"github.com/aretw0/subboxer/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultExportPath is where export writes when no path is given.
const DefaultExportPath = "transforms.star"

// Listing is the data of a list reply.
type Listing struct {
	Active       int                      `json:"active"`
	Subparticles []domain.SubparticlePose `json:"subparticles"`
}

// ExportResult is the data of an export reply.
type ExportResult struct {
	Path    string          `json:"path"`
	Records []bridge.Record `json:"records"`
}

type commandFunc func(r *Runner, ctx context.Context, args map[string]any) (any, error)

var commands = map[string]commandFunc{
	"open":     (*Runner).open,
	"mode":     (*Runner).mode,
	"press":    pointer(domain.PhasePress),
	"move":     pointer(domain.PhaseMove),
	"release":  pointer(domain.PhaseRelease),
	"abort":    noArgs((*Runner).abort),
	"key":      (*Runner).key,
	"next":     noArgs((*Runner).next),
	"prev":     noArgs((*Runner).previous),
	"previous": noArgs((*Runner).previous),
	"select":   (*Runner).selectID,
	"camera":   (*Runner).camera,
	"list":     noArgs((*Runner).list),
	"status":   noArgs((*Runner).status),
	"layers":   noArgs((*Runner).layers),
	"export":   (*Runner).export,
	"config":   (*Runner).configure,
	"help":     noArgs((*Runner).help),
	"quit":     noArgs((*Runner).exit),
	"exit":     noArgs((*Runner).exit),
}

// Commands lists the verbs Dispatch understands.
func Commands() []string {
	out := make([]string, 0, len(commands))
	for name := range commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs one command against the session. Failures are reported in the reply.
func (r *Runner) Dispatch(ctx context.Context, cmd Command) Reply {
	fn, ok := commands[cmd.Name]
	if !ok {
		return failure(cmd.Name, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name))
	}
	data, err := fn(r, ctx, cmd.Args)
	if err != nil {
		r.Logger.Debug("command failed", "command", cmd.Name, "err", err)
		return failure(cmd.Name, err)
	}
	return Reply{Command: cmd.Name, OK: true, Data: data}
}

func noArgs(fn func(r *Runner, ctx context.Context) (any, error)) commandFunc {
	return func(r *Runner, ctx context.Context, args map[string]any) (any, error) {
		if len(args) > 0 {
			return nil, errors.New("command takes no arguments")
		}
		return fn(r, ctx)
	}
}

func (r *Runner) open(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		Path  string `mapstructure:"path"`
		Shape []int  `mapstructure:"shape"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	switch {
	case in.Path != "":
		if err := r.Session.OpenMap(ctx, in.Path); err != nil {
			return nil, err
		}
	case len(in.Shape) == 3:
		v := domain.Volume{Shape: [3]int{in.Shape[0], in.Shape[1], in.Shape[2]}}
		if err := r.Session.OpenVolume(ctx, v); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("open needs a path or a three-element shape")
	}
	return r.Session.Status(), nil
}

func (r *Runner) mode(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		Mode string `mapstructure:"mode"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	m, err := domain.ParseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	if err := r.Session.SetMode(ctx, m); err != nil {
		return nil, err
	}
	return r.Session.Status(), nil
}

func pointer(phase domain.Phase) commandFunc {
	return func(r *Runner, ctx context.Context, args map[string]any) (any, error) {
		var ev domain.PointerEvent
		if err := decodeArgs(args, &ev); err != nil {
			return nil, err
		}
		if ev.Phase != "" && ev.Phase != phase {
			return nil, fmt.Errorf("phase %q does not match command %q", ev.Phase, phase)
		}
		ev.Phase = phase
		if err := r.Session.HandlePointer(ctx, ev); err != nil {
			return nil, err
		}
		return r.Session.Status(), nil
	}
}

func (r *Runner) abort(ctx context.Context) (any, error) {
	r.Session.Abort(ctx)
	return r.Session.Status(), nil
}

func (r *Runner) key(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		Key string `mapstructure:"key"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if err := r.Session.HandleKey(ctx, in.Key); err != nil {
		return nil, err
	}
	return r.Session.Status(), nil
}

func (r *Runner) next(ctx context.Context) (any, error) {
	if err := r.Session.Next(ctx); err != nil {
		return nil, err
	}
	return r.Session.Status(), nil
}

func (r *Runner) previous(ctx context.Context) (any, error) {
	if err := r.Session.Previous(ctx); err != nil {
		return nil, err
	}
	return r.Session.Status(), nil
}

func (r *Runner) selectID(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		ID *int `mapstructure:"id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.ID == nil {
		return nil, errors.New("select needs an id")
	}
	if err := r.Session.Select(ctx, *in.ID); err != nil {
		return nil, err
	}
	return r.Session.Status(), nil
}

func (r *Runner) camera(ctx context.Context, args map[string]any) (any, error) {
	current := r.Session.Status().Camera
	in := struct {
		Center        r3.Vec `mapstructure:"center"`
		ViewDirection r3.Vec `mapstructure:"view_direction"`
	}{Center: current.Center, ViewDirection: current.ViewDirection}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	r.Session.SetCamera(domain.Camera{Center: in.Center, ViewDirection: in.ViewDirection})
	return r.Session.Status(), nil
}

func (r *Runner) list(ctx context.Context) (any, error) {
	return Listing{Active: r.Session.Status().Active, Subparticles: r.Session.Subparticles()}, nil
}

func (r *Runner) status(ctx context.Context) (any, error) {
	return r.Session.Status(), nil
}

func (r *Runner) layers(ctx context.Context) (any, error) {
	return r.Session.Layers(), nil
}

func (r *Runner) export(ctx context.Context, args map[string]any) (any, error) {
	in := struct {
		Path string `mapstructure:"path"`
	}{Path: DefaultExportPath}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	records, err := r.Session.Export(in.Path)
	if err != nil {
		return nil, err
	}
	return ExportResult{Path: in.Path, Records: records}, nil
}

// configure merges overrides into the runner's configuration. Rotation scale and thickness
// take effect immediately; the other fields apply to the next session.
func (r *Runner) configure(ctx context.Context, args map[string]any) (any, error) {
	if len(args) == 0 {
		return r.Config, nil
	}
	next, err := r.Config.Merge(args)
	if err != nil {
		return nil, err
	}
	if next.RotationScale != r.Config.RotationScale {
		if err := r.Session.SetRotationScale(next.RotationScale); err != nil {
			return nil, err
		}
	}
	if next.Thickness != r.Config.Thickness {
		if err := r.Session.SetThickness(ctx, next.Thickness); err != nil {
			return nil, err
		}
	}
	r.Config = next
	r.Logger.Debug("configuration updated", "rotation_scale", next.RotationScale, "thickness", next.Thickness)
	return next, nil
}

func (r *Runner) help(ctx context.Context) (any, error) {
	return Help{Markdown: tui.ControlsMarkdown(r.Session.KeyBindings())}, nil
}

func (r *Runner) exit(ctx context.Context) (any, error) {
	r.quit = true
	return Notice{Message: "bye"}, nil
}
