// Package typesys implements the vector-polymorphic type model: base types,
// the expression types built from them (scalar, vector, or the transient
// Any placeholder), and the unifier that resolves polymorphic calls against
// concrete argument types.
package typesys

import "fmt"

// BaseKind is the closed set of base type kinds.
type BaseKind uint8

const (
	// KindInvalid is the unification bottom: a mismatch that is retained
	// rather than discarded so that downstream passes can diagnose use of
	// an invalid value.
	KindInvalid BaseKind = iota
	KindNumber
	KindString
	KindBytes
	KindBoolean
	KindStruct
	KindEnum
)

// String implements fmt.Stringer.
func (k BaseKind) String() string {
	switch k {
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindBoolean:
		return "Boolean"
	case KindStruct:
		return "Struct"
	case KindEnum:
		return "Enum"
	default:
		return "Invalid"
	}
}

// Base is a base type: one of the four scalar kinds, or a nominal Struct/Enum
// carrying a name, or Invalid.
type Base struct {
	Kind BaseKind
	// Name is set iff Kind is KindStruct or KindEnum.
	Name string
}

// Invalid is the canonical Invalid base type.
var Invalid = Base{Kind: KindInvalid}

// Number, String, Bytes, Boolean are the canonical scalar base types.
var (
	Number  = Base{Kind: KindNumber}
	String_ = Base{Kind: KindString}
	Bytes   = Base{Kind: KindBytes}
	Boolean = Base{Kind: KindBoolean}
)

// Struct returns the nominal Struct base type named name.
func Struct(name string) Base { return Base{Kind: KindStruct, Name: name} }

// Enum returns the nominal Enum base type named name.
func Enum(name string) Base { return Base{Kind: KindEnum, Name: name} }

// IsNominal reports whether b is a Struct or Enum base type.
func (b Base) IsNominal() bool {
	return b.Kind == KindStruct || b.Kind == KindEnum
}

// Equal reports structural equality of two base types.
func (b Base) Equal(o Base) bool {
	return b.Kind == o.Kind && b.Name == o.Name
}

// String implements fmt.Stringer.
func (b Base) String() string {
	if b.IsNominal() {
		return fmt.Sprintf("%s(%s)", b.Kind, b.Name)
	}
	return b.Kind.String()
}

// ExprKind distinguishes the three forms an Expr can take.
type ExprKind uint8

const (
	ExprBase ExprKind = iota
	ExprVec
	ExprAny
)

// Expr is an expression type: Base(b) | Vec(inner) | Any. Any appears only
// as a transient placeholder for unresolved polymorphic inference and is a
// compile error if it reaches emission.
type Expr struct {
	Kind  ExprKind
	Base  Base
	Inner *Expr
}

// AnyExpr is the canonical Any placeholder.
var AnyExpr = Expr{Kind: ExprAny}

// BaseExpr wraps a Base as a scalar Expr.
func BaseExpr(b Base) Expr { return Expr{Kind: ExprBase, Base: b} }

// VecExpr wraps inner as one layer of vector nesting.
func VecExpr(inner Expr) Expr { return Expr{Kind: ExprVec, Inner: &inner} }

// String implements fmt.Stringer.
func (e Expr) String() string {
	switch e.Kind {
	case ExprBase:
		return e.Base.String()
	case ExprVec:
		return "Vec<" + e.Inner.String() + ">"
	default:
		return "Any"
	}
}

// Member is a member type: a container depth paired with a base type,
// equivalently Vec^depth(Base).
type Member struct {
	Depth int
	Base  Base
}

// Scalar returns the depth-0 member type wrapping b.
func Scalar(b Base) Member { return Member{Depth: 0, Base: b} }

// IsContainer reports whether m has at least one vector layer.
func (m Member) IsContainer() bool { return m.Depth > 0 }

// String implements fmt.Stringer.
func (m Member) String() string {
	s := m.Base.String()
	for i := 0; i < m.Depth; i++ {
		s = "Vec<" + s + ">"
	}
	return s
}

// ToExpr converts a Member to its Expr representation.
func (m Member) ToExpr() Expr {
	e := BaseExpr(m.Base)
	for i := 0; i < m.Depth; i++ {
		e = VecExpr(e)
	}
	return e
}

// Flavor distinguishes reference vs non-reference argument/register-type
// constraints.
type Flavor uint8

const (
	NonReference Flavor = iota
	Reference
)

// String implements fmt.Stringer.
func (f Flavor) String() string {
	if f == Reference {
		return "Reference"
	}
	return "NonReference"
}
