// Package indexfix centralizes the index-shifting mechanics that keep a
// Module's cross-references consistent across insertion and deletion of
// functions, types, and globals.
package indexfix

import "github.com/wasmrw/wasmrw/internal/wasm"

// Direction is the sign applied to every shifted index.
type Direction int

const (
	Insert Direction = 1
	Delete Direction = -1
)

// WalkInstructions calls visit on every instruction reachable from instrs,
// descending into Block/Loop/If bodies. visit may mutate the instruction
// in place through the pointer it receives; it must not replace the
// backing slice.
func WalkInstructions(instrs []wasm.Instruction, visit func(*wasm.Instruction)) {
	for i := range instrs {
		in := &instrs[i]
		visit(in)
		switch args := in.Args.(type) {
		case wasm.BlockArgs:
			WalkInstructions(args.Body, visit)
		case wasm.IfArgs:
			WalkInstructions(args.Then, visit)
			WalkInstructions(args.Else, visit)
		}
	}
}

// walkAllCode runs WalkInstructions over every function body in m.
func walkAllCode(m *wasm.Module, visit func(*wasm.Instruction)) {
	for _, c := range m.CodeSection {
		WalkInstructions(c.Body, visit)
	}
}

// shiftIndex returns idx shifted by dir if idx is at or past the
// insertion/deletion point k.
func shiftIndex(idx, k wasm.Index, dir Direction) wasm.Index {
	if idx >= k {
		return uint32(int64(idx) + int64(dir))
	}
	return idx
}

// references reports whether idx equals k exactly, the case a Delete must
// reject because the entity being removed is still in use.
func references(idx, k wasm.Index) bool {
	return idx == k
}
