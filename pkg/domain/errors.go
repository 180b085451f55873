package domain

import "errors"

// ErrUnknownSubparticle is returned when an id does not name a subparticle in the store.
var ErrUnknownSubparticle = errors.New("unknown subparticle")

// ErrEmptyStore is returned when navigating a store that holds no subparticles.
var ErrEmptyStore = errors.New("empty subparticle store")

// ErrNoActiveSubparticle is returned when an operation needs an active subparticle and none is selected.
var ErrNoActiveSubparticle = errors.New("no active subparticle")

// ErrZAxisUndefined is returned when an in-plane rotation is requested before the z axis is set.
var ErrZAxisUndefined = errors.New("z axis undefined")

// ErrNoVolume is returned when a pick or plane operation runs before a volume is open.
var ErrNoVolume = errors.New("no volume loaded")

// ErrUnknownMode is returned when a mode name cannot be parsed.
var ErrUnknownMode = errors.New("unknown mode")
