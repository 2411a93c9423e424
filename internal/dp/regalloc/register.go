// Package regalloc allocates the opaque Register identities used throughout
// the compiler.
package regalloc

import "fmt"

// Register is an opaque integer identity. Two registers are equal iff their
// ids are equal; a Register carries no type of its own (see typesys.Model).
type Register uint32

// RegisterInvalid is the zero value, reserved as the empty/null register:
// id 0 is never handed out by Allocator.
const RegisterInvalid Register = 0

// Valid reports whether r was actually produced by an Allocator.
func (r Register) Valid() bool {
	return r != RegisterInvalid
}

// String implements fmt.Stringer.
func (r Register) String() string {
	return fmt.Sprintf("r%d", uint32(r))
}

// Allocator is a monotonic Register id source. It never reuses an id within
// one compilation.
//
// Allocator is a plain value meant to be owned by exactly one GenContext and
// threaded through the passes that need to mint new registers. A compile is
// single-threaded end to end, so there is no need for a shared, interior-
// mutable counter; a directly owned field is simpler and just as safe.
type Allocator struct {
	next Register
}

// New returns an Allocator whose first Allocate() call yields start+1.
//
// Starting above an existing high-water mark lets pre-image-phase allocation
// (which mints new registers for folded constants) avoid clashing with the
// ids already handed out during the IR-construction phase.
func New(start Register) *Allocator {
	return &Allocator{next: start}
}

// Allocate returns a fresh Register, never RegisterInvalid and never equal to
// any Register returned previously by this Allocator.
func (a *Allocator) Allocate() Register {
	a.next++
	return a.next
}

// HighWater returns the most recently allocated Register, or the start value
// passed to New if Allocate has never been called.
func (a *Allocator) HighWater() Register {
	return a.next
}
