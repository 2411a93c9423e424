package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

func TestUnifyBaseMatch(t *testing.T) {
	u := typesys.NewUnifier()
	r := regalloc.Register(1)
	require.NoError(t, u.Add(r, typesys.NonReference, typesys.BaseTerm(typesys.Number)))
	require.NoError(t, u.Add(r, typesys.NonReference, typesys.BaseTerm(typesys.Number)))

	model := u.ToModel()
	mt, err := model.Concrete(r)
	require.NoError(t, err)
	require.Equal(t, typesys.Scalar(typesys.Number), mt)
}

func TestUnifyBaseMismatchIsInvalidNotError(t *testing.T) {
	u := typesys.NewUnifier()
	r := regalloc.Register(1)
	require.NoError(t, u.Add(r, typesys.NonReference, typesys.BaseTerm(typesys.Number)))
	require.NoError(t, u.Add(r, typesys.NonReference, typesys.BaseTerm(typesys.String_)))

	model := u.ToModel()
	mt, err := model.Concrete(r)
	require.NoError(t, err)
	require.Equal(t, typesys.KindInvalid, mt.Base.Kind)
}

func TestUnifyPlaceholderResolvesThroughVec(t *testing.T) {
	u := typesys.NewUnifier()
	p := u.FreshPlaceholder()
	r1, r2 := regalloc.Register(1), regalloc.Register(2)

	require.NoError(t, u.Add(r1, typesys.NonReference, typesys.VecTerm(p)))
	require.NoError(t, u.Add(r2, typesys.NonReference, p))
	require.NoError(t, u.Add(r2, typesys.NonReference, typesys.BaseTerm(typesys.Boolean)))

	model := u.ToModel()
	m1, err := model.Concrete(r1)
	require.NoError(t, err)
	require.Equal(t, typesys.Member{Depth: 1, Base: typesys.Boolean}, m1)
}

func TestUnifyReferenceFlavorMismatchErrors(t *testing.T) {
	u := typesys.NewUnifier()
	r := regalloc.Register(1)
	require.NoError(t, u.Add(r, typesys.NonReference, typesys.BaseTerm(typesys.Number)))
	err := u.Add(r, typesys.Reference, typesys.BaseTerm(typesys.Number))
	require.Error(t, err)
}

func TestUnresolvedPlaceholderIsAnyAndErrorsOnConcrete(t *testing.T) {
	u := typesys.NewUnifier()
	p := u.FreshPlaceholder()
	r := regalloc.Register(1)
	require.NoError(t, u.Add(r, typesys.NonReference, p))

	model := u.ToModel()
	_, err := model.Concrete(r)
	require.Error(t, err)
}

func TestAllConcreteReflectsUnresolvedEntries(t *testing.T) {
	u := typesys.NewUnifier()
	r1, r2 := regalloc.Register(1), regalloc.Register(2)
	require.NoError(t, u.Add(r1, typesys.NonReference, typesys.BaseTerm(typesys.Number)))
	require.NoError(t, u.Add(r2, typesys.NonReference, u.FreshPlaceholder()))

	model := u.ToModel()
	require.False(t, model.AllConcrete())

	model.Remove(regalloc.Register(2))
	require.True(t, model.AllConcrete())
}

func TestOccursCheck(t *testing.T) {
	u := typesys.NewUnifier()
	p := u.FreshPlaceholder()
	r := regalloc.Register(1)
	// Force p to unify with Vec(p), an infinite term: must be rejected.
	require.NoError(t, u.Add(r, typesys.NonReference, p))
	err := u.Add(r, typesys.NonReference, typesys.VecTerm(p))
	require.Error(t, err)
}
