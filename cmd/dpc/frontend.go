package main

// The lexer/parser for DP source text lives in the surface front-end, not
// here. cmd/dpc consumes a direct JSON encoding of the typed front-IR the
// front-end hands the compiler: per entry point, instructions with register
// vectors and an optional per-register base-type map. It carries no
// struct/enum definitions.

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ensembl-dp/dpc/internal/dp/compiler"
	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// frontendInstruction is the JSON wire shape of one ir.Instruction.
type frontendInstruction struct {
	Op          string   `json:"op"`
	Regs        []uint32 `json:"regs"`
	Ident       string   `json:"ident,omitempty"`
	ConstInts   []int64  `json:"const_ints,omitempty"`
	ConstNumber float64  `json:"const_number,omitempty"`
	Module      string   `json:"module,omitempty"`
	Name        string   `json:"name,omitempty"`
	Field       string   `json:"field,omitempty"`
	Variant     string   `json:"variant,omitempty"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
}

// frontendEntry is one JSON entry point: a name and its instruction stream.
// RegisterType, when present, seeds the entry's type model with a concrete
// Base for that register (anything left unset defaults to Number, adequate
// for the arithmetic/print-only programs this thin CLI is meant to drive
// end-to-end; a real front-end would populate the full typesys.Model
// itself).
type frontendEntry struct {
	Name         string                `json:"name"`
	Instructions []frontendInstruction `json:"instructions"`
	RegisterType map[uint32]string     `json:"register_types,omitempty"`
}

// frontendProgram is the top-level JSON document cmd/dpc compile reads.
type frontendProgram struct {
	Entries []frontendEntry `json:"entries"`
}

var opcodeNames = map[string]ir.Supertype{
	"const":        ir.Const,
	"number_const": ir.NumberConst,
	"copy":         ir.Copy,
	"alias":        ir.Alias,
	"nil":          ir.Nil,
	"append":       ir.Append,
	"length":       ir.Length,
	"line_number":  ir.LineNumber,
	"call":         ir.Call,
}

func loadFrontendProgram(path string) (*frontendProgram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dpc: reading %s: %w", path, err)
	}
	var p frontendProgram
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("dpc: parsing %s: %w", path, err)
	}
	return &p, nil
}

func baseFromName(name string) typesys.Base {
	switch name {
	case "string":
		return typesys.String_
	case "bytes":
		return typesys.Bytes
	case "boolean":
		return typesys.Boolean
	default:
		return typesys.Number
	}
}

// toEntryPoints converts p into compiler.EntryPoints, allocating a fresh
// typesys.Model per entry and seeding it from RegisterType (defaulting to
// Number for unlisted registers actually used).
func toEntryPoints(p *frontendProgram) ([]compiler.EntryPoint, error) {
	out := make([]compiler.EntryPoint, 0, len(p.Entries))
	for _, e := range p.Entries {
		model := typesys.NewModel()
		instrs := make([]*ir.Instruction, 0, len(e.Instructions))
		for i, fi := range e.Instructions {
			op, ok := opcodeNames[fi.Op]
			if !ok {
				return nil, fmt.Errorf("dpc: entry %q instruction %d: unknown op %q", e.Name, i, fi.Op)
			}
			regs := make([]regalloc.Register, len(fi.Regs))
			for j, r := range fi.Regs {
				regs[j] = regalloc.Register(r)
			}
			instr := ir.New(op, regs...)
			instr.Ident = fi.Ident
			instr.ConstInts = fi.ConstInts
			instr.ConstNumber = fi.ConstNumber
			instr.DefKey = defstore.Key{Module: fi.Module, Name: fi.Name}
			instr.Field = fi.Field
			instr.Variant = fi.Variant
			instr.File = fi.File
			instr.Line = fi.Line
			instrs = append(instrs, instr)

			for _, r := range regs {
				base := typesys.Number
				if name, ok := e.RegisterType[uint32(r)]; ok {
					base = baseFromName(name)
				}
				model.Add(r, typesys.BaseExpr(base))
			}
		}
		out = append(out, compiler.EntryPoint{Name: e.Name, Instructions: instrs, Types: model})
	}
	return out, nil
}
