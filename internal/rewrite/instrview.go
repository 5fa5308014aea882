package rewrite

import "github.com/wasmrw/wasmrw/internal/wasm"

// Flatten converts the native nested (folded) instruction tree into a
// linear sequence: Block/Loop are delimited by a synthetic End, If by
// Else/End. Block/Loop/If instructions in the flat stream carry their
// block type but no nested Body/Then/Else -- those follow inline.
func Flatten(folded []wasm.Instruction) []wasm.Instruction {
	var out []wasm.Instruction
	for _, in := range folded {
		switch args := in.Args.(type) {
		case wasm.BlockArgs:
			out = append(out, wasm.Instruction{Opcode: in.Opcode, Args: wasm.BlockArgs{BlockType: args.BlockType}})
			out = append(out, Flatten(args.Body)...)
			out = append(out, wasm.Instruction{Opcode: wasm.OpcodeEnd})
		case wasm.IfArgs:
			out = append(out, wasm.Instruction{Opcode: in.Opcode, Args: wasm.IfArgs{BlockType: args.BlockType}})
			out = append(out, Flatten(args.Then)...)
			if args.Else != nil {
				out = append(out, wasm.Instruction{Opcode: wasm.OpcodeElse})
				out = append(out, Flatten(args.Else)...)
			}
			out = append(out, wasm.Instruction{Opcode: wasm.OpcodeEnd})
		default:
			out = append(out, in)
		}
	}
	return out
}

// Fold converts a flat instruction sequence back into the nested form,
// matching Block/Loop/If against their synthetic End (and, for If, an
// optional intervening Else) with a stack. Fold(Flatten(x)) is the
// identity for any valid body.
func Fold(flat []wasm.Instruction) []wasm.Instruction {
	body, rest := foldSeq(flat)
	// An End or Else at the top level closes no Block/Loop/If; keep it as
	// a plain instruction and fold whatever follows it.
	for len(rest) > 0 {
		body = append(body, rest[0])
		var more []wasm.Instruction
		more, rest = foldSeq(rest[1:])
		body = append(body, more...)
	}
	return body
}

// foldSeq folds a prefix of flat up to (but not including) the terminating
// End or Else at the current nesting level, returning the folded prefix
// and the remainder of flat starting at that terminator (nil if none).
func foldSeq(flat []wasm.Instruction) (folded []wasm.Instruction, rest []wasm.Instruction) {
	i := 0
	for i < len(flat) {
		in := flat[i]
		switch in.Opcode {
		case wasm.OpcodeEnd, wasm.OpcodeElse:
			return folded, flat[i:]
		case wasm.OpcodeBlock, wasm.OpcodeLoop:
			bt := in.Args.(wasm.BlockArgs).BlockType
			inner, after := foldSeq(flat[i+1:])
			folded = append(folded, wasm.Instruction{Opcode: in.Opcode, Args: wasm.BlockArgs{BlockType: bt, Body: inner}})
			// after[0] is the consumed End.
			i = len(flat) - len(after) + 1
			continue
		case wasm.OpcodeIf:
			bt := in.Args.(wasm.IfArgs).BlockType
			then, after := foldSeq(flat[i+1:])
			var els []wasm.Instruction
			if len(after) > 0 && after[0].Opcode == wasm.OpcodeElse {
				els, after = foldSeq(after[1:])
			} else {
				els = nil
			}
			folded = append(folded, wasm.Instruction{Opcode: in.Opcode, Args: wasm.IfArgs{BlockType: bt, Then: then, Else: els}})
			i = len(flat) - len(after) + 1
			continue
		default:
			folded = append(folded, in)
			i++
		}
	}
	return folded, nil
}
