package command

import (
	"fmt"
	"hash/crc64"
	"sort"
)

// crcTable is the ISO-polynomial CRC-64 table used for command-set trace
// checksums.
var crcTable = crc64.MakeTable(crc64.ISO)

// Entry binds one registered CommandType to its local opcode offset within
// a Set.
type Entry struct {
	Type   CommandTypeID
	Name   string // the public name this opcode is traced under
	Offset uint32
	Values int // value-count, part of the traced (name, offset, value-count) table
}

// Set bundles one command set: its identity (minus trace, computed here),
// an optional interp-lib id, its entries, headers, and dynamic-data blobs.
type Set struct {
	Name        string
	Major       int
	Minor       int
	InterpLib   string
	Entries     []Entry
	Headers     map[string][]byte
	DynamicData map[string][]byte
}

// NewSet returns an empty Set named name at version (major, minor).
func NewSet(name string, major, minor int) *Set {
	return &Set{Name: name, Major: major, Minor: minor, Headers: map[string][]byte{}, DynamicData: map[string][]byte{}}
}

// AddOpcode appends an entry binding ct to the next available local opcode
// offset. Offsets are tracked per command set rather than by a single
// running counter, since opcode bases are only assigned once sets are
// linked together; see internal/dp/link.OpcodeMapping.
func (s *Set) AddOpcode(ct CommandTypeID, name string, values int) uint32 {
	offset := uint32(len(s.Entries))
	s.Entries = append(s.Entries, Entry{Type: ct, Name: name, Offset: offset, Values: values})
	return offset
}

// NextOffset returns the next free local opcode offset, i.e. the count of
// registered entries.
func (s *Set) NextOffset() uint32 {
	return uint32(len(s.Entries))
}

// Trace computes the CRC-64 over this set's serialized (name, offset,
// value-count) table, sorted by offset for determinism.
func (s *Set) Trace() uint64 {
	entries := append([]Entry(nil), s.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
	crc := crc64.New(crcTable)
	for _, e := range entries {
		fmt.Fprintf(crc, "%s\x00%d\x00%d\x00", e.Name, e.Offset, e.Values)
	}
	return crc.Sum64()
}

// ID returns this set's SetID, with Trace freshly computed.
func (s *Set) ID() SetID {
	return SetID{Name: s.Name, Major: s.Major, Minor: s.Minor, Trace: s.Trace()}
}

// CheckTrace verifies that want matches this set's freshly computed trace,
// the link-time protection against silent opcode-reassignment across builds.
func (s *Set) CheckTrace(want uint64) error {
	got := s.Trace()
	if got != want {
		return fmt.Errorf("command: set %s/%d.%d trace mismatch: want %#x, got %#x", s.Name, s.Major, s.Minor, want, got)
	}
	return nil
}
