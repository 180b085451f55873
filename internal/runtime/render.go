package runtime

import (
	"context"

	"github.com/aretw0/subboxer/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

// Layers recomputes the derived visual state from the store: one point per subparticle,
// one vector per defined axis, and the transient z pick while DEFINE_Z_AXIS is current.
func (e *Engine) Layers() domain.Layers {
	all := e.store.All()
	l := domain.Layers{
		Points:  all,
		Vectors: make([]domain.FrameVector, 0, 3*len(all)),
		Active:  e.active,
	}
	for _, p := range all {
		for _, ax := range []struct {
			name domain.Axis
			dir  *r3.Vec
		}{
			{domain.AxisX, p.XAxis},
			{domain.AxisY, p.YAxis},
			{domain.AxisZ, p.ZAxis},
		} {
			if ax.dir == nil {
				continue
			}
			l.Vectors = append(l.Vectors, domain.FrameVector{
				ID:        p.ID,
				Axis:      ax.name,
				Origin:    p.Origin,
				Direction: *ax.dir,
			})
		}
	}
	if e.mode == domain.ModeDefineZAxis && e.zPick != nil {
		pick := *e.zPick
		l.ZPick = &pick
	}
	return l
}

// refreshLayers pushes the recomputed layers to observers.
func (e *Engine) refreshLayers(ctx context.Context) {
	if e.hooks.OnLayersChanged == nil {
		return
	}
	e.hooks.OnLayersChanged(ctx, &domain.LayersEvent{
		EventBase: domain.NewEventBase(domain.EventLayersChanged),
		Layers:    e.Layers(),
	})
}
