package runtime

import "github.com/aretw0/subboxer/pkg/domain"

// Status is a point-in-time summary of the engine for status lines and the HTTP API.
type Status struct {
	Mode         domain.Mode         `json:"mode"`
	Active       int                 `json:"active"`
	Subparticles int                 `json:"subparticles"`
	Volume       *domain.Volume      `json:"volume,omitempty"`
	Plane        domain.SlicingPlane `json:"plane"`
	Camera       domain.Camera       `json:"camera"`
	Interactive  bool                `json:"interactive"`
	Gesture      string              `json:"gesture,omitempty"`
}

// Status reports the current engine state.
func (e *Engine) Status() Status {
	s := Status{
		Mode:         e.mode,
		Active:       e.active,
		Subparticles: e.store.Len(),
		Plane:        e.plane,
		Camera:       e.camera,
		Interactive:  e.interactive,
		Gesture:      e.InFlight(),
	}
	if v, ok := e.Volume(); ok {
		s.Volume = &v
	}
	return s
}
