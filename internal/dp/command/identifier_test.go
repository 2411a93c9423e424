package command_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/command"
)

func TestParseIdentifierSplitsModuleAndName(t *testing.T) {
	id := command.ParseIdentifier("core::index")
	require.Equal(t, command.Identifier{Module: "core", Name: "index"}, id)
	require.Equal(t, "core::index", id.String())
}

func TestParseIdentifierWithoutModule(t *testing.T) {
	id := command.ParseIdentifier("bareword")
	require.Equal(t, command.Identifier{Name: "bareword"}, id)
	require.Equal(t, "bareword", id.String())
}
