package passes

import (
	"sort"

	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// interval is one register's [first, last] instruction-index span: the
// index of its first and last mention in the stream, computed by a single
// forward pass over instrs.
type interval struct {
	reg         regalloc.Register
	first, last int
}

// AssignRegs performs linear-scan register assignment: each register's
// live interval is computed, registers are visited longest-lived first,
// and each claims the smallest id not already reserved at any instant of
// its interval. This is the classic scan-a-reservation-bitmap linear-scan
// allocator, keyed here by instruction index rather than a machine
// instant. Id 0 is reserved as the empty/null register, so the first id
// ever handed out is 1.
func AssignRegs(c *ir.GenContext) error {
	instrs := c.Instructions()

	intervals := make(map[regalloc.Register]*interval)
	var order []regalloc.Register
	for i, instr := range instrs {
		for _, r := range instr.Regs {
			iv, ok := intervals[r]
			if !ok {
				iv = &interval{reg: r, first: i, last: i}
				intervals[r] = iv
				order = append(order, r)
			}
			iv.last = i
		}
	}

	// Longest-lived first; break ties by first-appearance order so the
	// assignment is deterministic regardless of map iteration order.
	sort.SliceStable(order, func(i, j int) bool {
		a, b := intervals[order[i]], intervals[order[j]]
		la, lb := a.last-a.first, b.last-b.first
		if la != lb {
			return la > lb
		}
		return a.first < b.first
	})

	// reservations[id] is the set of [first,last] ranges already claimed by
	// some register assigned to id.
	reservations := make(map[regalloc.Register][][2]int)
	mapping := make(map[regalloc.Register]regalloc.Register)

	overlaps := func(a, b [2]int) bool {
		return a[0] <= b[1] && b[0] <= a[1]
	}

	for _, r := range order {
		iv := intervals[r]
		span := [2]int{iv.first, iv.last}

		id := regalloc.Register(1)
		for {
			free := true
			for _, used := range reservations[id] {
				if overlaps(used, span) {
					free = false
					break
				}
			}
			if free {
				break
			}
			id++
		}
		reservations[id] = append(reservations[id], span)
		mapping[r] = id
	}

	for _, instr := range instrs {
		n := instr.Clone()
		for i, r := range n.Regs {
			n.Regs[i] = mapping[r]
		}
		c.Add(n)
	}
	c.PhaseFinished()
	return nil
}
