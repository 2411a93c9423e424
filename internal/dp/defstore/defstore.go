// Package defstore holds struct and enum definitions keyed by (module, name).
// It is consumed, never constructed, by the compiler: the surface front-end
// populates it before handing front-IR to the generation context.
package defstore

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// Key identifies a definition by its defining module and nominal name.
type Key struct {
	Module string
	Name   string
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("%s::%s", k.Module, k.Name)
}

// Field is one (field_name, member_type) pair of a struct definition, or the
// name/payload of one enum variant.
type Field struct {
	Name string
	Type typesys.Member
}

// StructDef is a nominal struct definition: an ordered list of fields,
// unique by name within the definition.
type StructDef struct {
	Key    Key
	Fields []Field
}

// EnumDef is a nominal enum definition: an ordered list of variants, each
// carrying exactly one payload type.
type EnumDef struct {
	Key      Key
	Variants []Field
}

// Store is the defstore: struct and enum definitions keyed by (module,name).
type Store struct {
	structs map[Key]*StructDef
	enums   map[Key]*EnumDef
}

// New returns an empty Store.
func New() *Store {
	return &Store{structs: make(map[Key]*StructDef), enums: make(map[Key]*EnumDef)}
}

// AddStruct registers a struct definition, erroring on a duplicate name or a
// duplicate field name within it.
func (s *Store) AddStruct(d *StructDef) error {
	if _, ok := s.structs[d.Key]; ok {
		return fmt.Errorf("defstore: duplicate struct definition %s", d.Key)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("defstore: duplicate field %q in struct %s", f.Name, d.Key)
		}
		seen[f.Name] = struct{}{}
	}
	s.structs[d.Key] = d
	return nil
}

// AddEnum registers an enum definition, erroring on a duplicate name or a
// duplicate variant name within it.
func (s *Store) AddEnum(d *EnumDef) error {
	if _, ok := s.enums[d.Key]; ok {
		return fmt.Errorf("defstore: duplicate enum definition %s", d.Key)
	}
	seen := make(map[string]struct{}, len(d.Variants))
	for _, f := range d.Variants {
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("defstore: duplicate variant %q in enum %s", f.Name, d.Key)
		}
		seen[f.Name] = struct{}{}
	}
	s.enums[d.Key] = d
	return nil
}

// Struct looks up a struct definition by key.
func (s *Store) Struct(k Key) (*StructDef, bool) {
	d, ok := s.structs[k]
	return d, ok
}

// Enum looks up an enum definition by key.
func (s *Store) Enum(k Key) (*EnumDef, bool) {
	d, ok := s.enums[k]
	return d, ok
}
