package link_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/command/builtin"
	"github.com/ensembl-dp/dpc/internal/dp/link"
)

func coreStoreAndSet(t *testing.T) (*command.CommandTypeStore, *command.Set) {
	t.Helper()
	store := command.NewCommandTypeStore()
	ids, err := builtin.RegisterAll(store)
	require.NoError(t, err)
	set, err := builtin.DefaultSet(ids)
	require.NoError(t, err)
	return store, set
}

func TestLinkerAddSetAndRecalculate(t *testing.T) {
	store, set := coreStoreAndSet(t)
	l := link.NewLinker(store)
	require.NoError(t, l.AddSet(set))
	require.NoError(t, l.Recalculate())

	opcode, err := l.GlobalOpcode(set.Entries[0].Type)
	require.NoError(t, err)
	require.Equal(t, uint32(0), opcode)

	opcode, err = l.GlobalOpcode(set.Entries[4].Type)
	require.NoError(t, err)
	require.Equal(t, uint32(4), opcode)
}

func TestLinkerRejectsDuplicateMajorVersion(t *testing.T) {
	store, set := coreStoreAndSet(t)
	l := link.NewLinker(store)
	require.NoError(t, l.AddSet(set))

	dup := command.NewSet("core", 1, 0)
	err := l.AddSet(dup)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")
}

func TestLinkerCheckAllTracesPassesForFreshSets(t *testing.T) {
	store, set := coreStoreAndSet(t)
	l := link.NewLinker(store)
	require.NoError(t, l.AddSet(set))
	require.NoError(t, l.CheckAllTraces())
}

func TestLinkerGlobalOpcodeErrorsForUnboundType(t *testing.T) {
	store, set := coreStoreAndSet(t)
	l := link.NewLinker(store)
	require.NoError(t, l.AddSet(set))
	require.NoError(t, l.Recalculate())

	_, err := l.GlobalOpcode(command.CommandTypeID(999))
	require.Error(t, err)
}
