package compiler

import (
	"sort"

	"github.com/Manyfestation/silverscript/ast"
)

// Origin says where a variable binding came from.
type Origin string

const (
	OriginContractParam Origin = "contract_param"
	OriginFunctionParam Origin = "function_param"
	OriginLocal         Origin = "local"
)

// Binding is one named value visible inside a frame. Constructor
// parameters are folded to constants at compile time and carry their
// value directly; everything else names a stack slot, counted from the
// bottom of the data stack.
type Binding struct {
	Name     string `json:"name"`
	Origin   Origin `json:"origin"`
	TypeName string `json:"type"`

	// StackDepth is the bottom-up slot holding the value, -1 for
	// folded constants.
	StackDepth int `json:"stack_depth"`

	// DeclaredAt is the first sequence number at which the binding is
	// visible.
	DeclaredAt uint32 `json:"declared_at"`

	Const []byte `json:"const_value,omitempty"`
}

// FrameInfo describes one concrete function instantiation: the body of
// an entrypoint, or one inlined expansion of a helper at one call
// site.
type FrameInfo struct {
	ID       uint32  `json:"id"`
	Parent   *uint32 `json:"parent,omitempty"`
	FuncName string  `json:"func_name"`
	Depth    uint32  `json:"call_depth"`

	Bindings []Binding `json:"bindings"`
}

// Mapping ties one emitted instruction back to source. Instructions
// with no source counterpart (selector dispatch, epilogues) have no
// mapping.
type Mapping struct {
	ByteOffset        uint32   `json:"byte_offset"`
	Sequence          uint32   `json:"sequence"`
	FrameID           uint32   `json:"frame_id"`
	CallDepth         uint32   `json:"call_depth"`
	SourceSpan        ast.Span `json:"source_span"`
	StatementBoundary bool     `json:"statement_boundary"`
}

// Table is the debug-information side table emitted alongside the
// bytecode. Mappings are ordered by byte offset, which is also
// sequence order.
type Table struct {
	Mappings []Mapping   `json:"mappings"`
	Frames   []FrameInfo `json:"frames"`
}

// MappingAt returns the mapping for the instruction at byteOffset, if
// the instruction has one.
func (t *Table) MappingAt(byteOffset uint32) (Mapping, bool) {
	i := sort.Search(len(t.Mappings), func(i int) bool {
		return t.Mappings[i].ByteOffset >= byteOffset
	})
	if i < len(t.Mappings) && t.Mappings[i].ByteOffset == byteOffset {
		return t.Mappings[i], true
	}
	return Mapping{}, false
}

// Frame returns the frame with the given id.
func (t *Table) Frame(id uint32) (FrameInfo, bool) {
	for _, f := range t.Frames {
		if f.ID == id {
			return f, true
		}
	}
	return FrameInfo{}, false
}

// VisibleBindings returns the bindings in scope at (sequence, frame):
// the frame's own bindings declared at or before sequence, then those
// of its ancestors, innermost first.
func (t *Table) VisibleBindings(sequence, frameID uint32) []Binding {
	var res []Binding
	seen := make(map[string]bool)
	id := frameID
	for {
		f, ok := t.Frame(id)
		if !ok {
			break
		}
		for _, b := range f.Bindings {
			if b.DeclaredAt > sequence || seen[b.Name] {
				continue
			}
			seen[b.Name] = true
			res = append(res, b)
		}
		if f.Parent == nil {
			break
		}
		id = *f.Parent
	}
	return res
}
