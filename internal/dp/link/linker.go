package link

import (
	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/dperr"
)

// location records where one registered CommandType's opcode lives: which
// command set it was bound into, and its local offset within that set.
type location struct {
	set    command.SetID
	offset uint32
}

// Linker concatenates command sets and assigns them global opcodes via an
// OpcodeMapping. It is the single place that knows both the registered
// CommandTypeStore and the final opcode numbering.
type Linker struct {
	Store   *command.CommandTypeStore
	Mapping *OpcodeMapping

	sets    map[command.Key]*command.Set
	order   []command.SetID
	typeLoc map[command.CommandTypeID]location
}

// NewLinker returns a Linker over store.
func NewLinker(store *command.CommandTypeStore) *Linker {
	return &Linker{
		Store:   store,
		Mapping: NewOpcodeMapping(),
		sets:    make(map[command.Key]*command.Set),
		typeLoc: make(map[command.CommandTypeID]location),
	}
}

// AddSet registers set, rejecting a duplicate (name, major, minor) already
// present as a LinkError, distinct from a later CheckTrace mismatch.
// SetID's Key is (name,version) only, so this dedup keys identically.
func (l *Linker) AddSet(set *command.Set) error {
	id := set.ID()
	key := id.Key()
	if _, ok := l.sets[key]; ok {
		return dperr.New(dperr.LinkError, "duplicate command-set major version: %s/%d.%d already linked", set.Name, set.Major, set.Minor)
	}
	l.sets[key] = set
	l.order = append(l.order, id)
	for _, e := range set.Entries {
		l.Mapping.AddOpcode(id, e.Offset)
		l.typeLoc[e.Type] = location{set: id, offset: e.Offset}
	}
	return nil
}

// CheckTrace verifies that the set registered under sid's (name,major,minor)
// still has sid's trace, the link-time drift check against opcode
// reassignment across builds.
func (l *Linker) CheckTrace(sid command.SetID) error {
	set, ok := l.sets[sid.Key()]
	if !ok {
		return dperr.New(dperr.LinkError, "no such command set %s", sid)
	}
	if err := set.CheckTrace(sid.Trace); err != nil {
		return dperr.Wrap(dperr.LinkError, err, "trace checksum mismatch for %s", sid)
	}
	return nil
}

// CheckAllTraces runs CheckTrace for every linked set, matching sid.Trace
// against each set's own freshly recomputed trace (i.e. this validates
// internal consistency of a freshly-linked build; a cross-build check
// additionally needs the previously recorded trace supplied by the caller
// via CheckTrace).
func (l *Linker) CheckAllTraces() error {
	for _, sid := range l.order {
		if err := l.CheckTrace(sid); err != nil {
			return err
		}
	}
	return nil
}

// Recalculate finalizes the opcode mapping after every set has been added;
// must be called before GlobalOpcode.
func (l *Linker) Recalculate() error {
	l.Mapping.Recalculate()
	if err := l.Mapping.checkConsecutive(); err != nil {
		return dperr.Wrap(dperr.LinkError, err, "opcode mapping inconsistent after recalculate")
	}
	return nil
}

// GlobalOpcode returns the fully-assigned opcode for a CommandTypeID bound
// via AddSet.
func (l *Linker) GlobalOpcode(ct command.CommandTypeID) (uint32, error) {
	loc, ok := l.typeLoc[ct]
	if !ok {
		return 0, dperr.New(dperr.LinkError, "command type %d was never bound to a linked set", ct)
	}
	base, err := l.Mapping.BaseOf(loc.set)
	if err != nil {
		return 0, err
	}
	return base + loc.offset, nil
}

// Sets returns every linked set's id, in insertion order.
func (l *Linker) Sets() []command.SetID {
	return append([]command.SetID(nil), l.order...)
}
