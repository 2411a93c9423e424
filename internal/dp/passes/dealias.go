package passes

import (
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// DeAlias computes the equivalence closure of every Alias instruction and
// rewrites every register reference to its canonical representative,
// dropping the Alias instructions themselves. After this pass no
// instruction mentions a register that was only ever an alias of another.
func DeAlias(c *ir.GenContext) error {
	uf := newUnionFind()
	for _, instr := range c.Instructions() {
		if instr.Op == ir.Alias {
			uf.union(instr.Regs[0], instr.Regs[1])
		}
	}

	for _, instr := range c.Instructions() {
		if instr.Op == ir.Alias {
			continue
		}
		n := instr.Clone()
		for i, r := range n.Regs {
			n.Regs[i] = uf.find(r)
		}
		c.Add(n)
	}
	c.PhaseFinished()
	return nil
}

// unionFind is a standard disjoint-set structure over registalloc.Register,
// used to collapse alias chains into one canonical representative per
// equivalence class.
type unionFind struct {
	parent map[regalloc.Register]regalloc.Register
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[regalloc.Register]regalloc.Register)}
}

func (u *unionFind) find(r regalloc.Register) regalloc.Register {
	p, ok := u.parent[r]
	if !ok {
		return r
	}
	root := u.find(p)
	u.parent[r] = root // path compression
	return root
}

func (u *unionFind) union(a, b regalloc.Register) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Lower register id wins as canonical representative, so the result is
	// deterministic regardless of alias-declaration order.
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
