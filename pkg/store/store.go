// Package store implements the subparticle store: an arena of subparticle poses keyed by
// stable integer ids.
//
// A Store is owned by a single annotation engine and is not safe for concurrent use.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidDirection is returned by Navigate for a direction other than +1 or -1.
var ErrInvalidDirection = errors.New("navigation direction must be +1 or -1")

// DefaultReference is the arbitrary vector crossed with z to seed a default in-plane basis.
var DefaultReference = r3.Vec{X: 1.23, Y: 2.34, Z: 3.45}

// fallbackReference is used when z is parallel to the configured reference.
var fallbackReference = r3.Vec{X: 1}

// Store owns subparticle poses by id.
type Store struct {
	poses     map[int]*domain.SubparticlePose
	next      int
	reference r3.Vec
}

// Option configures a Store.
type Option func(*Store)

// WithReference overrides the reference vector used by InitialiseBasis.
func WithReference(v r3.Vec) Option {
	return func(s *Store) {
		if r3.Norm(v) > 0 {
			s.reference = v
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		poses:     make(map[int]*domain.SubparticlePose),
		reference: DefaultReference,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of subparticles.
func (s *Store) Len() int { return len(s.poses) }

// Add inserts a subparticle at origin and returns its id. Ids increase monotonically and
// are never reused.
func (s *Store) Add(origin r3.Vec) int {
	id := s.next
	s.poses[id] = &domain.SubparticlePose{ID: id, Origin: origin}
	s.next = id + 1
	return id
}

// Get returns a copy of subparticle id.
func (s *Store) Get(id int) (domain.SubparticlePose, error) {
	p, err := s.lookup(id)
	if err != nil {
		return domain.SubparticlePose{}, err
	}
	return p.Clone(), nil
}

// IDs returns all ids in ascending order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, len(s.poses))
	for id := range s.poses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// All returns copies of all subparticles ordered by id.
func (s *Store) All() []domain.SubparticlePose {
	ids := s.IDs()
	out := make([]domain.SubparticlePose, len(ids))
	for i, id := range ids {
		out[i] = s.poses[id].Clone()
	}
	return out
}

// SetZAxis sets z to the normalized direction from the subparticle origin to zPoint.
//
// An existing x axis is re-projected onto the plane perpendicular to the new z so the frame
// stays orthonormal; if that is impossible the in-plane axes are cleared.
func (s *Store) SetZAxis(id int, zPoint r3.Vec) error {
	p, err := s.lookup(id)
	if err != nil {
		return err
	}
	z, err := geometry.Normalize(r3.Sub(zPoint, p.Origin))
	if err != nil {
		return fmt.Errorf("z axis of subparticle %d: %w", id, err)
	}
	p.ZAxis = &z

	if p.XAxis == nil {
		p.YAxis = nil
		return nil
	}
	x, err := geometry.Normalize(r3.Sub(*p.XAxis, r3.Scale(r3.Dot(*p.XAxis, z), z)))
	if err != nil {
		p.XAxis, p.YAxis = nil, nil
		return nil
	}
	p.SetFrame(domain.Frame{X: x, Y: r3.Cross(z, x), Z: z})
	return nil
}

// InitialiseBasis derives x and y from z when they are unset.
//
// x = unit(z × reference) and y = z × x, giving a right-handed triad. A subparticle without
// a z axis receives the identity frame. Existing frames are left untouched.
func (s *Store) InitialiseBasis(id int) error {
	p, err := s.lookup(id)
	if err != nil {
		return err
	}
	if p.ZAxis == nil {
		p.SetFrame(domain.Frame{X: r3.Vec{X: 1}, Y: r3.Vec{Y: 1}, Z: r3.Vec{Z: 1}})
		return nil
	}
	if p.XAxis != nil && p.YAxis != nil {
		return nil
	}

	z := *p.ZAxis
	x, err := geometry.Normalize(r3.Cross(z, s.reference))
	if err != nil {
		x, err = geometry.Normalize(r3.Cross(z, fallbackReference))
		if err != nil {
			return fmt.Errorf("basis of subparticle %d: %w", id, err)
		}
	}
	p.SetFrame(domain.Frame{X: x, Y: r3.Cross(z, x), Z: z})
	return nil
}

// RotateInPlane rotates the current in-plane axes about z by deltaDeg.
func (s *Store) RotateInPlane(id int, deltaDeg float64) error {
	p, err := s.lookup(id)
	if err != nil {
		return err
	}
	f, err := s.frameOf(p)
	if err != nil {
		return err
	}
	p.SetFrame(rotateFrame(f, deltaDeg))
	return nil
}

// SetInPlaneRotation replaces the in-plane axes with reference rotated about z by thetaDeg.
// Gestures pass the basis captured at press time so repeated moves never compound.
func (s *Store) SetInPlaneRotation(id int, reference domain.Frame, thetaDeg float64) error {
	p, err := s.lookup(id)
	if err != nil {
		return err
	}
	if p.ZAxis == nil {
		return fmt.Errorf("subparticle %d: %w", id, domain.ErrZAxisUndefined)
	}
	reference.Z = *p.ZAxis
	p.SetFrame(rotateFrame(reference, thetaDeg))
	return nil
}

// Navigate returns the id after current in ascending id order, wrapping at either end.
func (s *Store) Navigate(current, direction int) (int, error) {
	if len(s.poses) == 0 {
		return 0, domain.ErrEmptyStore
	}
	if direction != 1 && direction != -1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidDirection, direction)
	}
	ids := s.IDs()
	idx := sort.SearchInts(ids, current)
	if idx == len(ids) || ids[idx] != current {
		return 0, fmt.Errorf("navigate from %d: %w", current, domain.ErrUnknownSubparticle)
	}
	n := len(ids)
	return ids[((idx+direction)%n+n)%n], nil
}

func (s *Store) lookup(id int) (*domain.SubparticlePose, error) {
	p, ok := s.poses[id]
	if !ok {
		return nil, fmt.Errorf("subparticle %d: %w", id, domain.ErrUnknownSubparticle)
	}
	return p, nil
}

func (s *Store) frameOf(p *domain.SubparticlePose) (domain.Frame, error) {
	if p.ZAxis == nil {
		return domain.Frame{}, fmt.Errorf("subparticle %d: %w", p.ID, domain.ErrZAxisUndefined)
	}
	if !p.HasFrame() {
		if err := s.InitialiseBasis(p.ID); err != nil {
			return domain.Frame{}, err
		}
	}
	f, _ := p.Frame()
	return f, nil
}

// rotateFrame returns f·Rz(theta) with x re-normalized and y rebuilt as z × x, which bounds
// drift over long sequences of incremental updates.
func rotateFrame(f domain.Frame, thetaDeg float64) domain.Frame {
	rotated := f.Matrix().Mul(geometry.InPlaneRotation(thetaDeg))
	x, err := geometry.Normalize(rotated.Col(0))
	if err != nil {
		return f
	}
	// Remove any component along z picked up from rounding.
	x, err = geometry.Normalize(r3.Sub(x, r3.Scale(r3.Dot(x, f.Z), f.Z)))
	if err != nil {
		return f
	}
	return domain.Frame{X: x, Y: r3.Cross(f.Z, x), Z: f.Z}
}
