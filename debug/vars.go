package debug

import (
	"encoding/hex"
	"strconv"

	"github.com/Manyfestation/silverscript/compiler"
	"github.com/Manyfestation/silverscript/vm"
)

// Variable is one binding resolved to a concrete value at an execution
// point. RawValue is the machine encoding; Value is the display form.
type Variable struct {
	Name     string          `json:"name"`
	Origin   compiler.Origin `json:"origin"`
	Type     string          `json:"type"`
	RawValue []byte          `json:"raw_value"`
	Value    string          `json:"value"`
}

// Variables resolves the bindings visible at the current point.
// Returns an empty list while no scope information exists, e.g. still
// in the dispatch prologue.
func (s *Session) Variables() []Variable {
	if s.mapping == nil {
		return nil
	}
	return s.VariablesAt(s.mapping.Sequence, s.mapping.FrameID)
}

// VariablesAt resolves the bindings visible at (sequence, frame)
// against the engine's current stack.
func (s *Session) VariablesAt(sequence, frameID uint32) []Variable {
	stack := s.engine.DataStack()
	var res []Variable
	for _, b := range s.compiled.DebugInfo.VisibleBindings(sequence, frameID) {
		v := Variable{Name: b.Name, Origin: b.Origin, Type: b.TypeName}
		switch {
		case b.StackDepth < 0:
			v.RawValue = b.Const
		case b.StackDepth < len(stack):
			v.RawValue = stack[b.StackDepth]
		default:
			v.Value = "?"
			res = append(res, v)
			continue
		}
		v.Value = FormatValue(b.TypeName, v.RawValue)
		res = append(res, v)
	}
	return res
}

// FormatValue decodes machine-encoded bytes into a display string per
// the declared type: integers in decimal, booleans as true/false,
// byte strings in hex. It never fails; malformed encodings fall back
// to hex.
func FormatValue(typeName string, raw []byte) string {
	switch typeName {
	case "int":
		n, err := vm.AsInt64(raw)
		if err != nil {
			return "0x" + hex.EncodeToString(raw)
		}
		return strconv.FormatInt(n, 10)
	case "bool":
		return strconv.FormatBool(vm.AsBool(raw))
	case "string":
		return strconv.Quote(string(raw))
	}
	return "0x" + hex.EncodeToString(raw)
}
