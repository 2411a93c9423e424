package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/passes"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

func TestPeepholeRewritesNilThenAppendToCopy(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r := regalloc.Register(1)
	s := regalloc.Register(2)

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.Nil, r),
		ir.New(ir.Append, r, s),
	})

	require.NoError(t, passes.Peephole(c))
	out := c.Instructions()
	require.Len(t, out, 1)
	require.Equal(t, ir.Copy, out[0].Op)
	require.Equal(t, r, out[0].Regs[0])
	require.Equal(t, s, out[0].Regs[1])
}

func TestPeepholeNilInvalidatedByInterveningWrite(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r := regalloc.Register(1)
	s := regalloc.Register(2)

	write := ir.New(ir.NumberConst, r)
	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.Nil, r),
		write,
		ir.New(ir.Append, r, s),
	})

	require.NoError(t, passes.Peephole(c))
	out := c.Instructions()
	require.Len(t, out, 3)
	require.Equal(t, ir.Append, out[2].Op)
}

func TestPeepholeCollapsesConsecutiveLineNumbers(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	l1 := ir.New(ir.LineNumber)
	l1.Line = 10
	l2 := ir.New(ir.LineNumber)
	l2.Line = 11

	c.SetInstructions([]*ir.Instruction{l1, l2})
	require.NoError(t, passes.Peephole(c))
	out := c.Instructions()
	require.Len(t, out, 1)
	require.Equal(t, 11, out[0].Line)
}
