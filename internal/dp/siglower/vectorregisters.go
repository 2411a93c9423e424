package siglower

import "github.com/ensembl-dp/dpc/internal/dp/typesys"

// VectorRegisters describes the fixed layout of 2d+1 register slots that
// represent one depth-d vector value:
//
//	slot 0:        data      (sequence of Base)
//	slots 1..2d:   (offset_i, length_i) pairs, i = 0..d-1
//
// Start is the first slot's offset within the signature-wide contiguous
// register range; it is 0 until RegisterSignature.Add binds it.
type VectorRegisters struct {
	Depth int
	Base  typesys.Base
	Start int
}

// RegisterCount returns 2*Depth+1, the number of register slots this
// descriptor occupies.
func (v VectorRegisters) RegisterCount() int {
	return 2*v.Depth + 1
}

// DataPos returns the slot index of the flat data array.
func (v VectorRegisters) DataPos() int {
	return v.Start
}

// OffsetPos returns the slot index of layer i's offset array (0 <= i < Depth).
func (v VectorRegisters) OffsetPos(i int) (int, error) {
	if i < 0 || i >= v.Depth {
		return 0, errLayer(i, v.Depth)
	}
	return v.Start + 1 + 2*i, nil
}

// LengthPos returns the slot index of layer i's length array (0 <= i < Depth).
func (v VectorRegisters) LengthPos(i int) (int, error) {
	if i < 0 || i >= v.Depth {
		return 0, errLayer(i, v.Depth)
	}
	return v.Start + 2 + 2*i, nil
}

func errLayer(i, depth int) error {
	return &layerRangeError{i: i, depth: depth}
}

type layerRangeError struct {
	i, depth int
}

func (e *layerRangeError) Error() string {
	return "siglower: layer index out of range for vector depth"
}
