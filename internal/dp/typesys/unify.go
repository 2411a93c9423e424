package typesys

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// placeholderID identifies an internal key: a polymorphic placeholder
// introduced by instantiating a call signature's free type variables with
// fresh internal keys.
type placeholderID uint32

// Term is a unification term: a concrete Base, a Vec wrapping another Term,
// an unbound Placeholder, or Any. External keys (registers) are not part of
// the term graph itself; Unifier.regTerm binds each register to a Term.
type termKind uint8

const (
	termBase termKind = iota
	termVec
	termPlaceholder
	termAny
)

// Term is a unification term.
type Term struct {
	kind        termKind
	base        Base
	inner       *Term
	placeholder placeholderID
}

// BaseTerm wraps a concrete Base.
func BaseTerm(b Base) Term { return Term{kind: termBase, base: b} }

// VecTerm wraps one layer of vector nesting around inner.
func VecTerm(inner Term) Term { return Term{kind: termVec, inner: &inner} }

// AnyTerm is the placeholder-free "unconstrained" term, used for arguments
// whose type is not yet known at all.
func AnyTerm() Term { return Term{kind: termAny} }

// Unifier unifies expression-constraint terms over placeholders and
// registers, one per compiled program.
type Unifier struct {
	nextPlaceholder placeholderID
	subst           map[placeholderID]Term
	regTerm         map[regalloc.Register]Term
	regFlavor       map[regalloc.Register]Flavor
}

// NewUnifier returns an empty Unifier.
func NewUnifier() *Unifier {
	return &Unifier{
		subst:     make(map[placeholderID]Term),
		regTerm:   make(map[regalloc.Register]Term),
		regFlavor: make(map[regalloc.Register]Flavor),
	}
}

// FreshPlaceholder introduces a new, unbound internal key term.
func (u *Unifier) FreshPlaceholder() Term {
	id := u.nextPlaceholder
	u.nextPlaceholder++
	return Term{kind: termPlaceholder, placeholder: id}
}

// Add introduces an equality constraint: reg, tagged with flavor, must
// unify with term. Constraints come from call signatures after
// instantiating each free placeholder with a fresh internal key.
func (u *Unifier) Add(reg regalloc.Register, flavor Flavor, term Term) error {
	if existing, ok := u.regFlavor[reg]; ok {
		if existing != flavor {
			return fmt.Errorf("typesys: %s used as both %s and %s", reg, existing, flavor)
		}
	} else {
		u.regFlavor[reg] = flavor
	}

	if existing, ok := u.regTerm[reg]; ok {
		unified, err := u.unify(existing, term)
		if err != nil {
			return err
		}
		u.regTerm[reg] = unified
		return nil
	}
	u.regTerm[reg] = term
	return nil
}

// resolve follows the placeholder substitution chain to a head term: either
// a concrete Base/Vec/Any, or an unbound placeholder.
func (u *Unifier) resolve(t Term) Term {
	for t.kind == termPlaceholder {
		bound, ok := u.subst[t.placeholder]
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// occurs reports whether placeholder p appears anywhere within t (after
// following bound placeholders), used to reject infinite unification cycles.
func (u *Unifier) occurs(p placeholderID, t Term) bool {
	t = u.resolve(t)
	switch t.kind {
	case termPlaceholder:
		return t.placeholder == p
	case termVec:
		return u.occurs(p, *t.inner)
	default:
		return false
	}
}

// unify unifies a and b, returning the resulting term. Base/Base mismatches
// and Base/Vec kind mismatches do not error: they resolve to an Invalid
// term that is retained so downstream passes can diagnose use of an invalid
// value. Only an occurs-check failure is a hard error.
func (u *Unifier) unify(a, b Term) (Term, error) {
	a, b = u.resolve(a), u.resolve(b)

	if a.kind == termPlaceholder {
		return u.bind(a.placeholder, b)
	}
	if b.kind == termPlaceholder {
		return u.bind(b.placeholder, a)
	}
	if a.kind == termAny {
		return b, nil
	}
	if b.kind == termAny {
		return a, nil
	}
	if a.kind == termBase && b.kind == termBase {
		if a.base.Equal(b.base) {
			return a, nil
		}
		return BaseTerm(Invalid), nil
	}
	if a.kind == termVec && b.kind == termVec {
		inner, err := u.unify(*a.inner, *b.inner)
		if err != nil {
			return Term{}, err
		}
		return VecTerm(inner), nil
	}
	// Vec unified against a Base: kind mismatch, retained as Invalid.
	return BaseTerm(Invalid), nil
}

func (u *Unifier) bind(p placeholderID, t Term) (Term, error) {
	t = u.resolve(t)
	if t.kind == termPlaceholder && t.placeholder == p {
		return t, nil
	}
	if u.occurs(p, t) {
		return Term{}, fmt.Errorf("typesys: occurs-check failed binding placeholder %d", p)
	}
	u.subst[p] = t
	return t, nil
}

// ToModel materializes every constrained register's fully-resolved
// expression type into a Model. Unresolved placeholders become ExprAny;
// Model.Concrete flags those as errors only once a pass actually needs the
// concrete Member (i.e. at/after simplify).
func (u *Unifier) ToModel() *Model {
	m := NewModel()
	for reg, term := range u.regTerm {
		m.Add(reg, u.termToExpr(term))
	}
	return m
}

func (u *Unifier) termToExpr(t Term) Expr {
	t = u.resolve(t)
	switch t.kind {
	case termBase:
		return BaseExpr(t.base)
	case termVec:
		return VecExpr(u.termToExpr(*t.inner))
	default:
		return AnyExpr
	}
}

// Flavor returns the recorded reference/non-reference flavor for reg, or
// NonReference if reg was never constrained.
func (u *Unifier) Flavor(reg regalloc.Register) Flavor {
	return u.regFlavor[reg]
}
