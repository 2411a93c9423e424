package dperr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/dperr"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := dperr.New(dperr.LinkError, "duplicate major version %s", "core/1.0")
	require.True(t, errors.Is(err, dperr.Sentinel(dperr.LinkError)))
	require.False(t, errors.Is(err, dperr.Sentinel(dperr.TypeError)))
}

func TestWrapPreservesCauseAndKind(t *testing.T) {
	cause := errors.New("boom")
	err := dperr.Wrap(dperr.PreImageError, cause, "folding %s", "core::plus")
	require.True(t, errors.Is(err, dperr.Sentinel(dperr.PreImageError)))
	require.True(t, errors.Is(err, cause))

	var e *dperr.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, dperr.PreImageError, e.Kind)
}

func TestInternalfCarriesInvariantName(t *testing.T) {
	err := dperr.Internalf("assign-regs-dense", "gap found at %d", 3)
	require.Equal(t, dperr.Internal, err.Kind)
	require.Equal(t, "assign-regs-dense", err.Invariant)
	require.Contains(t, err.Error(), "assign-regs-dense")
}

func TestWithLocationAttachesFileLine(t *testing.T) {
	err := dperr.New(dperr.PreImageError, "register not valid").WithLocation("prog.dp", 12)
	require.Contains(t, err.Error(), "prog.dp:12")
}

func TestKindOfIgnoresTextOnlyWrapping(t *testing.T) {
	err := dperr.New(dperr.NameResolution, "unknown identifier %q", "foo")
	wrapped := errors.New("context: " + err.Error())
	_, ok := dperr.KindOf(wrapped)
	require.False(t, ok)

	kind, ok := dperr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, dperr.NameResolution, kind)
}
