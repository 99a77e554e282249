package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// UUID issues random v4 identifiers so records created offline on different
// devices never collide.
type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}
