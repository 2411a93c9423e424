// Package link implements opcode mapping and final program emission:
// concatenating command sets and producing the CBOR program with header,
// opcode map, instruction list, and dynamic data blobs.
package link

import (
	"fmt"
	"sort"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/dperr"
)

// OpcodeMapping maintains two maps keyed by command.SetID.Key: next_offset
// (per-set highest-used local opcode + 1) and base_opcode (per-set global
// opcode start), plus the reverse base-ordered lookup recalculate() builds.
type OpcodeMapping struct {
	order         []command.SetID
	ready         bool
	nextOffset    map[command.Key]uint32
	baseOpcode    map[command.Key]uint32
	opcodeToKey   []opcodeEntry // sorted by base, built by recalculate
	dontSerialize map[command.Key]bool
}

type opcodeEntry struct {
	base uint32
	key  command.Key
}

// NewOpcodeMapping returns an empty, ready (trivially recalculated)
// OpcodeMapping.
func NewOpcodeMapping() *OpcodeMapping {
	return &OpcodeMapping{
		ready:         true,
		nextOffset:    make(map[command.Key]uint32),
		baseOpcode:    make(map[command.Key]uint32),
		dontSerialize: make(map[command.Key]bool),
	}
}

// AddOpcode records that sid has a local opcode at offset, growing
// next_offset and marking the mapping un-recalculated.
func (m *OpcodeMapping) AddOpcode(sid command.SetID, offset uint32) {
	key := sid.Key()
	if _, ok := m.nextOffset[key]; !ok {
		m.nextOffset[key] = 0
		m.order = append(m.order, sid)
	}
	if m.nextOffset[key] <= offset {
		m.nextOffset[key] = offset + 1
	}
	m.ready = false
}

// DontSerialize excludes sid's base from the emitted opcode_map, for sets
// the interpreter always has present and never needs a runtime lookup for.
func (m *OpcodeMapping) DontSerialize(sid command.SetID) {
	m.dontSerialize[sid.Key()] = true
}

// Recalculate packs every added set in insertion order, assigning each a
// base_opcode equal to the running sum of next_offsets seen so far. Must be
// called before any Decode/BaseOf lookup after a mutation.
func (m *OpcodeMapping) Recalculate() {
	m.baseOpcode = make(map[command.Key]uint32, len(m.order))
	m.opcodeToKey = m.opcodeToKey[:0]
	var highWater uint32
	for _, sid := range m.order {
		key := sid.Key()
		next := m.nextOffset[key]
		m.baseOpcode[key] = highWater
		m.opcodeToKey = append(m.opcodeToKey, opcodeEntry{base: highWater, key: key})
		highWater += next
	}
	sort.Slice(m.opcodeToKey, func(i, j int) bool { return m.opcodeToKey[i].base < m.opcodeToKey[j].base })
	m.ready = true
}

// Adjust overrides every set's base wholesale, e.g. to reuse an existing
// bytecode's numbering.
func (m *OpcodeMapping) Adjust(bases map[command.Key]uint32) {
	m.order = m.order[:0]
	m.baseOpcode = make(map[command.Key]uint32, len(bases))
	m.opcodeToKey = m.opcodeToKey[:0]
	for key, base := range bases {
		m.baseOpcode[key] = base
		m.opcodeToKey = append(m.opcodeToKey, opcodeEntry{base: base, key: key})
	}
	sort.Slice(m.opcodeToKey, func(i, j int) bool { return m.opcodeToKey[i].base < m.opcodeToKey[j].base })
	m.ready = true
}

// BaseOf returns sid's assigned global base opcode.
func (m *OpcodeMapping) BaseOf(sid command.SetID) (uint32, error) {
	if !m.ready {
		return 0, dperr.New(dperr.LinkError, "recalculate not called after adding")
	}
	base, ok := m.baseOpcode[sid.Key()]
	if !ok {
		return 0, dperr.New(dperr.LinkError, "no such command set %s", sid)
	}
	return base, nil
}

// Decode reverse-range-looks-up opcode to the command set and local offset
// it belongs to.
func (m *OpcodeMapping) Decode(opcode uint32) (command.Key, uint32, error) {
	if !m.ready {
		return command.Key{}, 0, dperr.New(dperr.LinkError, "recalculate not called after adding")
	}
	idx := sort.Search(len(m.opcodeToKey), func(i int) bool { return m.opcodeToKey[i].base > opcode }) - 1
	if idx < 0 {
		return command.Key{}, 0, dperr.New(dperr.LinkError, "no command set covers opcode %d", opcode)
	}
	e := m.opcodeToKey[idx]
	return e.key, opcode - e.base, nil
}

// Entries returns every [base, sid] pair for serialization, skipping sets
// marked DontSerialize, ordered by base.
func (m *OpcodeMapping) Entries() ([]BaseEntry, error) {
	if !m.ready {
		return nil, dperr.New(dperr.LinkError, "recalculate not called after adding")
	}
	out := make([]BaseEntry, 0, len(m.order))
	for _, sid := range m.order {
		key := sid.Key()
		if m.dontSerialize[key] {
			continue
		}
		out = append(out, BaseEntry{Base: m.baseOpcode[key], ID: sid})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base < out[j].Base })
	return out, nil
}

// BaseEntry is one serialized [base_opcode, command-set-id] pair.
type BaseEntry struct {
	Base uint32
	ID   command.SetID
}

// checkConsecutive verifies that for any two distinct sets present, their
// [base, base+next_offset) ranges are disjoint and contiguous when
// concatenated in insertion order.
func (m *OpcodeMapping) checkConsecutive() error {
	var prevEnd uint32
	for i, sid := range m.order {
		key := sid.Key()
		base := m.baseOpcode[key]
		if i > 0 && base != prevEnd {
			return fmt.Errorf("link: opcode ranges not contiguous: expected base %d, got %d for %s", prevEnd, base, sid)
		}
		prevEnd = base + m.nextOffset[key]
	}
	return nil
}
