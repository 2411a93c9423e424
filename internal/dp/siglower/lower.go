package siglower

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// MemberMode is the per-argument mode recorded on a register signature.
type MemberMode uint8

const (
	ModeIn MemberMode = iota
	ModeOut
	ModeInOut
	ModeFilter
)

// String implements fmt.Stringer.
func (m MemberMode) String() string {
	switch m {
	case ModeOut:
		return "Out"
	case ModeInOut:
		return "InOut"
	case ModeFilter:
		return "Filter"
	default:
		return "In"
	}
}

// DataFlow is the per-argument data-flow tag recorded on a register
// signature.
type DataFlow uint8

const (
	FlowIn DataFlow = iota
	FlowOut
	FlowInOut
)

// String implements fmt.Stringer.
func (f DataFlow) String() string {
	switch f {
	case FlowOut:
		return "Out"
	case FlowInOut:
		return "InOut"
	default:
		return "In"
	}
}

// MakeFullType walks typ and lowers it into a FullType: a mapping from
// ComplexPath to VectorRegisters descriptor, laid out in path-traversal
// order.
//
// The walk produces only field and branch path segments; it takes no
// anonymous-path counter and never mints an Anon segment. mode does not
// affect the layout.
func MakeFullType(defs *defstore.Store, mode MemberMode, typ typesys.Member) (*FullType, error) {
	ft := &FullType{}
	if err := walk(defs, ft, RootPath, typ.Depth, typ.Base); err != nil {
		return nil, err
	}
	return ft, nil
}

func walk(defs *defstore.Store, ft *FullType, path ComplexPath, depth int, base typesys.Base) error {
	switch base.Kind {
	case typesys.KindStruct:
		def, ok := defs.Struct(defstore.Key{Module: moduleOf(base), Name: nameOf(base)})
		if !ok {
			return fmt.Errorf("siglower: unknown struct %s", base)
		}
		for _, f := range def.Fields {
			if err := walk(defs, ft, path.Field(f.Name), depth+f.Type.Depth, f.Type.Base); err != nil {
				return err
			}
		}
		return nil

	case typesys.KindEnum:
		def, ok := defs.Enum(defstore.Key{Module: moduleOf(base), Name: nameOf(base)})
		if !ok {
			return fmt.Errorf("siglower: unknown enum %s", base)
		}
		// Discriminator descriptor at the current path, nested to the same
		// depth as the enum value itself.
		ft.Entries = append(ft.Entries, FullTypeEntry{
			Path: path,
			VR:   VectorRegisters{Depth: depth, Base: typesys.Number},
		})
		for _, v := range def.Variants {
			if err := walk(defs, ft, path.Branch(v.Name), depth+v.Type.Depth, v.Type.Base); err != nil {
				return err
			}
		}
		return nil

	default:
		ft.Entries = append(ft.Entries, FullTypeEntry{
			Path: path,
			VR:   VectorRegisters{Depth: depth, Base: base},
		})
		return nil
	}
}

// moduleOf/nameOf split a nominal Base's Name field, which is stored as
// "module::name" by convention of the front-end populating defstore.Store;
// see defstore.Key.
func moduleOf(b typesys.Base) string {
	mod, _ := splitQualified(b.Name)
	return mod
}

func nameOf(b typesys.Base) string {
	_, name := splitQualified(b.Name)
	return name
}

func splitQualified(qualified string) (module, name string) {
	for i := len(qualified) - 1; i >= 1; i-- {
		if qualified[i-1] == ':' && qualified[i] == ':' {
			return qualified[:i-1], qualified[i+1:]
		}
	}
	return "", qualified
}
