package link

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/dperr"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
)

// DebugEntry is one [file_handle_id, line, col] tuple, aligned by index with
// its entry point's instruction list.
type DebugEntry struct {
	FileHandle string
	Line       int
	Col        int
}

// Program is the compiled artifact: the header map, opcode map,
// per-entry-point instruction streams, an optional debug table, and
// dynamic-data blobs keyed by set.
type Program struct {
	HeaderMap   map[string][]byte
	Opcodes     []BaseEntry
	Entries     map[string][][]int64
	Debug       map[string][]DebugEntry
	DynamicData map[string]map[string][]byte
}

// Build walks every entry point's finished instruction stream, binds each
// instruction to its registered command, serializes its arguments, and
// resolves its global opcode through l, producing the final Program.
//
// debugFiles maps a LineNumber instruction's File field to the resolver
// document handle recorded for it; entry points compiled with
// Config.GenerateDebug=false pass a nil map and get no debug table.
func Build(l *Linker, entryPoints map[string][]*ir.Instruction, debugFiles map[string]string, dynamicData map[string]map[string][]byte, headers map[string][]byte) (*Program, error) {
	opcodes, err := l.Mapping.Entries()
	if err != nil {
		return nil, err
	}
	p := &Program{
		HeaderMap:   headers,
		Opcodes:     opcodes,
		Entries:     make(map[string][][]int64, len(entryPoints)),
		DynamicData: dynamicData,
	}
	if debugFiles != nil {
		p.Debug = make(map[string][]DebugEntry, len(entryPoints))
	}

	for name, instrs := range entryPoints {
		encoded := make([][]int64, 0, len(instrs))
		var debug []DebugEntry
		for _, instr := range instrs {
			if instr.Op == ir.LineNumber {
				if debugFiles != nil {
					debug = append(debug, DebugEntry{FileHandle: debugFiles[instr.File], Line: instr.Line})
				}
				continue
			}
			trigger := triggerFor(instr)
			id, ok := l.Store.ByTrigger(trigger)
			if !ok {
				return nil, dperr.New(dperr.LinkError, "entry %q: no command registered for %s", name, trigger)
			}
			ct, err := l.Store.Get(id)
			if err != nil {
				return nil, dperr.Wrap(dperr.Internal, err, "entry %q", name)
			}
			cmd, err := ct.FromInstruction(instr)
			if err != nil {
				return nil, dperr.Wrap(dperr.LinkError, err, "entry %q: binding %s", name, trigger)
			}
			args, err := cmd.Serialize()
			if err != nil {
				return nil, dperr.Wrap(dperr.LinkError, err, "entry %q: serializing %s", name, trigger)
			}
			opcode, err := l.GlobalOpcode(id)
			if err != nil {
				return nil, dperr.Wrap(dperr.LinkError, err, "entry %q: opcode for %s", name, trigger)
			}
			row := make([]int64, 0, 1+len(args))
			row = append(row, int64(opcode))
			row = append(row, args...)
			encoded = append(encoded, row)
		}
		p.Entries[name] = encoded
		if debugFiles != nil {
			p.Debug[name] = debug
		}
	}
	return p, nil
}

// triggerFor returns the CommandTrigger an emitted instruction binds to: a
// fixed supertype for everything but Call, which binds by its library
// identifier.
func triggerFor(instr *ir.Instruction) command.CommandTrigger {
	if instr.Op == ir.Call {
		return command.ByCommand(command.ParseIdentifier(instr.Ident))
	}
	return command.ByInstruction(instr.Op)
}

// wireEntry is one [string-key, value] pair; Program's CBOR encoding is an
// array of such pairs rather than a CBOR map, preserving the prescribed key
// order deterministically (a Go map has no key order of its own, so
// encoding one would not keep that order).
type wireEntry struct {
	_     struct{} `cbor:",toarray"`
	Key   string
	Value cbor.RawMessage
}

// Encode serializes p to the CBOR top-level layout: an array of [key,
// value] pairs for header_map, opcode_map, programs, debug (when present),
// and dynamic_data.
func (p *Program) Encode() ([]byte, error) {
	var entries []wireEntry

	add := func(key string, v interface{}) error {
		raw, err := cbor.Marshal(v)
		if err != nil {
			return fmt.Errorf("link: encoding %q: %w", key, err)
		}
		entries = append(entries, wireEntry{Key: key, Value: raw})
		return nil
	}

	if err := add("header_map", p.HeaderMap); err != nil {
		return nil, err
	}

	type opcodeRow struct {
		_     struct{} `cbor:",toarray"`
		Base  uint32
		Name  string
		Major int
		Minor int
		Trace uint64
	}
	rows := make([]opcodeRow, len(p.Opcodes))
	for i, e := range p.Opcodes {
		rows[i] = opcodeRow{Base: e.Base, Name: e.ID.Name, Major: e.ID.Major, Minor: e.ID.Minor, Trace: e.ID.Trace}
	}
	if err := add("opcode_map", rows); err != nil {
		return nil, err
	}

	if err := add("programs", p.Entries); err != nil {
		return nil, err
	}

	if p.Debug != nil {
		type debugRow struct {
			_    struct{} `cbor:",toarray"`
			File string
			Line int
			Col  int
		}
		out := make(map[string][]debugRow, len(p.Debug))
		for name, rows := range p.Debug {
			converted := make([]debugRow, len(rows))
			for i, d := range rows {
				converted[i] = debugRow{File: d.FileHandle, Line: d.Line, Col: d.Col}
			}
			out[name] = converted
		}
		if err := add("debug", out); err != nil {
			return nil, err
		}
	}

	if err := add("dynamic_data", p.DynamicData); err != nil {
		return nil, err
	}

	return cbor.Marshal(entries)
}

// Decode parses a CBOR byte stream produced by Encode back into a Program.
func Decode(data []byte) (*Program, error) {
	var entries []wireEntry
	if err := cbor.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("link: decoding program: %w", err)
	}
	p := &Program{}
	for _, e := range entries {
		switch e.Key {
		case "header_map":
			if err := cbor.Unmarshal(e.Value, &p.HeaderMap); err != nil {
				return nil, fmt.Errorf("link: decoding header_map: %w", err)
			}
		case "opcode_map":
			type opcodeRow struct {
				_     struct{} `cbor:",toarray"`
				Base  uint32
				Name  string
				Major int
				Minor int
				Trace uint64
			}
			var rows []opcodeRow
			if err := cbor.Unmarshal(e.Value, &rows); err != nil {
				return nil, fmt.Errorf("link: decoding opcode_map: %w", err)
			}
			p.Opcodes = make([]BaseEntry, len(rows))
			for i, r := range rows {
				p.Opcodes[i] = BaseEntry{Base: r.Base, ID: command.SetID{Name: r.Name, Major: r.Major, Minor: r.Minor, Trace: r.Trace}}
			}
		case "programs":
			if err := cbor.Unmarshal(e.Value, &p.Entries); err != nil {
				return nil, fmt.Errorf("link: decoding programs: %w", err)
			}
		case "debug":
			type debugRow struct {
				_    struct{} `cbor:",toarray"`
				File string
				Line int
				Col  int
			}
			var out map[string][]debugRow
			if err := cbor.Unmarshal(e.Value, &out); err != nil {
				return nil, fmt.Errorf("link: decoding debug: %w", err)
			}
			p.Debug = make(map[string][]DebugEntry, len(out))
			for name, rows := range out {
				converted := make([]DebugEntry, len(rows))
				for i, r := range rows {
					converted[i] = DebugEntry{FileHandle: r.File, Line: r.Line, Col: r.Col}
				}
				p.Debug[name] = converted
			}
		case "dynamic_data":
			if err := cbor.Unmarshal(e.Value, &p.DynamicData); err != nil {
				return nil, fmt.Errorf("link: decoding dynamic_data: %w", err)
			}
		}
	}
	return p, nil
}
