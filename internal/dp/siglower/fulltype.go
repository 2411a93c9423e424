package siglower

// FullTypeEntry pairs one ComplexPath with the VectorRegisters descriptor
// lowered at that path.
type FullTypeEntry struct {
	Path ComplexPath
	VR   VectorRegisters
}

// FullType is the mapping ComplexPath -> VectorRegistersDescriptor that
// represents a single argument's storage footprint, in path-traversal
// order (the order MakeFullType emits them).
type FullType struct {
	Entries []FullTypeEntry
}

// RegisterCount returns the total number of register slots across every
// entry: 2*depth_sum(T) + leaf_count(T) for the member type T this
// FullType was lowered from, since each entry contributes one data slot
// plus an (offset, length) pair per nesting layer.
func (ft *FullType) RegisterCount() int {
	n := 0
	for _, e := range ft.Entries {
		n += e.VR.RegisterCount()
	}
	return n
}

// AddStart shifts every entry's VectorRegisters.Start by offset, binding
// this FullType's slot-relative layout to an absolute contiguous range.
func (ft *FullType) AddStart(offset int) {
	for i := range ft.Entries {
		ft.Entries[i].VR.Start += offset
	}
}

// Lookup returns the descriptor at path, if any.
func (ft *FullType) Lookup(path ComplexPath) (VectorRegisters, bool) {
	for _, e := range ft.Entries {
		if e.Path == path {
			return e.VR, true
		}
	}
	return VectorRegisters{}, false
}
