package compiler

import (
	"github.com/Manyfestation/silverscript/ast"
	"github.com/Manyfestation/silverscript/vm"
)

// builder accumulates the program and its debug table. Every emitted
// instruction consumes one sequence number whether or not it gets a
// mapping, so sequence numbers are instruction indexes.
type builder struct {
	program []byte
	table   Table
	frames  []*FrameInfo

	seq       uint32
	nextFrame uint32
}

func (b *builder) addOp(op vm.Op) uint32 {
	off := uint32(len(b.program))
	b.program = append(b.program, byte(op))
	b.seq++
	return off
}

func (b *builder) addPushBytes(data []byte) uint32 {
	off := uint32(len(b.program))
	b.program = append(b.program, vm.PushdataBytes(data)...)
	b.seq++
	return off
}

func (b *builder) addPushInt64(n int64) uint32 {
	off := uint32(len(b.program))
	b.program = append(b.program, vm.PushdataInt64(n)...)
	b.seq++
	return off
}

// mapTo records a mapping for the instruction just emitted at off.
func (b *builder) mapTo(off uint32, f *FrameInfo, span ast.Span, boundary bool) {
	b.table.Mappings = append(b.table.Mappings, Mapping{
		ByteOffset:        off,
		Sequence:          b.seq - 1,
		FrameID:           f.ID,
		CallDepth:         f.Depth,
		SourceSpan:        span,
		StatementBoundary: boundary,
	})
}

// newFrame allocates a frame. The first frame allocated is frame 0.
func (b *builder) newFrame(funcName string, parent *FrameInfo, depth uint32) *FrameInfo {
	id := b.nextFrame
	b.nextFrame++
	f := &FrameInfo{ID: id, FuncName: funcName, Depth: depth}
	if parent != nil {
		pid := parent.ID
		f.Parent = &pid
	}
	b.frames = append(b.frames, f)
	return f
}

// finish seals the debug table.
func (b *builder) finish() Table {
	for _, f := range b.frames {
		b.table.Frames = append(b.table.Frames, *f)
	}
	return b.table
}
