package command_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
)

func TestTriggersOfDifferentKindsAreDistinct(t *testing.T) {
	byInstr := command.ByInstruction(ir.Copy)
	byCmd := command.ByCommand(command.Identifier{Module: "core", Name: "copy"})
	require.NotEqual(t, byInstr, byCmd)
}

func TestTriggerEqualityIsByValue(t *testing.T) {
	a := command.ByCommand(command.ParseIdentifier("core::plus"))
	b := command.ByCommand(command.Identifier{Module: "core", Name: "plus"})
	require.Equal(t, a, b)
}

func TestTriggerStringFormatsEachKind(t *testing.T) {
	require.Contains(t, command.ByInstruction(ir.Call).String(), "builtin")
	require.Equal(t, "core::plus", command.ByCommand(command.ParseIdentifier("core::plus")).String())
}
