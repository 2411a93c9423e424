package link_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/command/builtin"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/link"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

func TestBuildEncodesOneEntryPointProgram(t *testing.T) {
	store, set := coreStoreAndSet(t)
	l := link.NewLinker(store)
	require.NoError(t, l.AddSet(set))
	require.NoError(t, l.Recalculate())

	r1, r2, r3 := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)
	plus := ir.New(ir.Call, r3, r1, r2)
	plus.Ident = builtin.PlusID.String()
	print := ir.New(ir.Call, r3)
	print.Ident = builtin.PrintID.String()

	entryPoints := map[string][]*ir.Instruction{
		"main": {plus, print},
	}

	program, err := link.Build(l, entryPoints, nil, nil, map[string][]byte{"core": []byte("hdr")})
	require.NoError(t, err)
	require.Len(t, program.Entries["main"], 2)

	addRow := program.Entries["main"][0]
	require.Equal(t, int64(0), addRow[0]) // core::add is the first-registered opcode, base 0
	require.Equal(t, []int64{int64(r3), int64(r1), int64(r2)}, addRow[1:])

	printRow := program.Entries["main"][1]
	require.Equal(t, int64(1), printRow[0])
	require.Equal(t, []int64{int64(r3)}, printRow[1:])
}

func TestEncodeDecodeRoundTrips(t *testing.T) {
	store, set := coreStoreAndSet(t)
	l := link.NewLinker(store)
	require.NoError(t, l.AddSet(set))
	require.NoError(t, l.Recalculate())

	r1 := regalloc.Register(1)
	print := ir.New(ir.Call, r1)
	print.Ident = builtin.PrintID.String()

	entryPoints := map[string][]*ir.Instruction{"main": {print}}
	program, err := link.Build(l, entryPoints, nil, map[string]map[string][]byte{"core/1.0": {"blob": []byte{1, 2, 3}}}, map[string][]byte{"core": []byte("hdr")})
	require.NoError(t, err)

	data, err := program.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := link.Decode(data)
	require.NoError(t, err)
	require.Equal(t, program.Entries, decoded.Entries)
	require.Equal(t, program.HeaderMap, decoded.HeaderMap)
	require.Equal(t, program.Opcodes, decoded.Opcodes)
	require.Equal(t, program.DynamicData, decoded.DynamicData)
}

func TestBuildErrorsOnUnregisteredCallIdent(t *testing.T) {
	store := command.NewCommandTypeStore()
	l := link.NewLinker(store)
	require.NoError(t, l.Recalculate())

	bogus := ir.New(ir.Call, regalloc.Register(1))
	bogus.Ident = "nope::nope"
	_, err := link.Build(l, map[string][]*ir.Instruction{"main": {bogus}}, nil, nil, nil)
	require.Error(t, err)
}
