package command

import "fmt"

// CommandTypeID is an opaque handle into a CommandTypeStore; treat it as an
// index, not a pointer.
type CommandTypeID int

// CommandTypeStore is the append-only vector of registered CommandTypes,
// indexed by CommandTypeID; no removal.
type CommandTypeStore struct {
	types []CommandType
}

// NewCommandTypeStore returns an empty CommandTypeStore.
func NewCommandTypeStore() *CommandTypeStore {
	return &CommandTypeStore{}
}

// Register appends ct and returns its id. Whether ct's Command values
// implement Foldable is a static property of the concrete Command type, not
// of any particular instruction, so the check is made against a
// representative zero-value Command supplied by the caller rather than by
// invoking FromInstruction speculatively. This rejects a Foldable schema
// whose Command never actually implements PreimagePost at registration
// time, rather than leaving it to surface as a runtime type assertion
// failure the first time the command folds.
func (s *CommandTypeStore) Register(ct CommandType, sample Command) (CommandTypeID, error) {
	schema := ct.Schema()
	if schema.Foldable {
		if _, ok := sample.(Foldable); !ok {
			return 0, fmt.Errorf("command: %s declares Foldable but its Command does not implement command.Foldable", schema.Trigger)
		}
	}
	id := CommandTypeID(len(s.types))
	s.types = append(s.types, ct)
	return id, nil
}

// Get returns the CommandType registered under id.
func (s *CommandTypeStore) Get(id CommandTypeID) (CommandType, error) {
	if id < 0 || int(id) >= len(s.types) {
		return nil, fmt.Errorf("command: no such CommandTypeID %d", id)
	}
	return s.types[id], nil
}

// Len returns the number of registered CommandTypes.
func (s *CommandTypeStore) Len() int { return len(s.types) }

// ByTrigger returns the CommandTypeID registered for trigger, if any. A
// linear scan is fine here: registration happens once per compile, and
// lookups during call binding are far fewer than instructions compiled.
func (s *CommandTypeStore) ByTrigger(trigger CommandTrigger) (CommandTypeID, bool) {
	for i, t := range s.types {
		if t.Schema().Trigger == trigger {
			return CommandTypeID(i), true
		}
	}
	return 0, false
}
