package command

import "fmt"

// SetID identifies a command set by name and (major, minor) version, with a
// trace checksum carried alongside. Go's == on SetID compares Trace too, but
// Key excludes it: two sets with the same name/version but a different
// trace still collide under Key, so a duplicate-registration check and a
// trace mismatch are reported as two separate failures rather than
// conflated into one.
type SetID struct {
	Name  string
	Major int
	Minor int
	Trace uint64
}

// Key is the (name, major, minor) tuple used for map-keying SetIDs,
// deliberately excluding Trace so a duplicate-major-version registration is
// detected independently of a trace mismatch.
type Key struct {
	Name  string
	Major int
	Minor int
}

// Key returns id's equality/hash key.
func (id SetID) Key() Key {
	return Key{Name: id.Name, Major: id.Major, Minor: id.Minor}
}

// String implements fmt.Stringer.
func (id SetID) String() string {
	return fmt.Sprintf("%s/%d.%d", id.Name, id.Major, id.Minor)
}
