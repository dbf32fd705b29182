/*
Package trace turns one contract invocation into the artifact a
presentation layer renders: trace metadata, the static opcode listing,
and two ordered snapshot sequences: one per machine instruction, one
per source statement. Execution errors do not abort trace production;
the failing step is recorded with its message and the truncated trace
is still returned.
*/
package trace

import (
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	"github.com/Manyfestation/silverscript/ast"
	"github.com/Manyfestation/silverscript/bc"
	"github.com/Manyfestation/silverscript/compiler"
	"github.com/Manyfestation/silverscript/debug"
	"github.com/Manyfestation/silverscript/vm"
)

// Request describes one trace run.
type Request struct {
	Source   string
	Function string // empty means the first entrypoint
	CtorArgs []string
	Args     []string

	// MaxSteps bounds each stepping pass; 0 means the session default.
	MaxSteps int
}

// Snapshot is the state at one execution point.
type Snapshot struct {
	PC          int               `json:"pc"`
	ByteOffset  uint32            `json:"byte_offset"`
	Opcode      string            `json:"opcode,omitempty"`
	Mapping     *compiler.Mapping `json:"mapping,omitempty"`
	CallStack   []string          `json:"call_stack,omitempty"`
	IsExecuting bool              `json:"is_executing"`
	DataStack   []string          `json:"data_stack"`
	AltStack    []string          `json:"alt_stack"`
	Variables   []debug.Variable  `json:"variables"`
	Error       string            `json:"error,omitempty"`
}

// Meta summarizes one trace run.
type Meta struct {
	ContractName    string   `json:"contract_name"`
	FunctionName    string   `json:"function_name"`
	SelectorIndex   *int     `json:"selector_index,omitempty"`
	WithoutSelector bool     `json:"without_selector"`
	CtorArgs        []string `json:"ctor_args"`
	Args            []string `json:"args"`
	SigScriptHex    string   `json:"sigscript_hex"`
	SigScriptLen    int      `json:"sigscript_len"`
	ProgramLen      int      `json:"program_len"`
	OpcodeCount     int      `json:"opcode_count"`
	OpcodeSteps     int      `json:"opcode_steps"`
	SourceSteps     int      `json:"source_steps"`
	GeneratedAt     string   `json:"generated_at"`
}

// Trace is the complete artifact for one invocation.
type Trace struct {
	Meta        Meta               `json:"meta"`
	Opcodes     []debug.OpcodeMeta `json:"opcodes"`
	OpcodeTrace []Snapshot         `json:"opcode_trace"`
	SourceTrace []Snapshot         `json:"source_trace"`
	Source      string             `json:"source"`
}

// Build parses, compiles, and executes one invocation at both step
// granularities. Parse and compile failures abort with an error;
// execution failures are captured inside the returned trace.
func Build(req Request) (*Trace, error) {
	contract, err := ast.ParseContract(req.Source)
	if err != nil {
		return nil, err
	}

	ctorArgs := req.CtorArgs
	if len(ctorArgs) < len(contract.Params) {
		params := make([]compiler.ABIParam, len(contract.Params))
		for i, p := range contract.Params {
			params[i] = compiler.ABIParam{Name: p.Name, Type: p.TypeName}
		}
		ctorArgs, err = FillArgs(params, ctorArgs)
		if err != nil {
			return nil, err
		}
	}

	compiled, err := compiler.Compile(contract, ctorArgs)
	if err != nil {
		return nil, err
	}

	fnName := req.Function
	if fnName == "" {
		fnName = compiled.Entrypoints()[0].Name
	}
	fn, ok := compiled.Function(fnName)
	if !ok {
		return nil, errors.Errorf("function %s is not in the ABI of %s", fnName, compiled.ContractName)
	}

	args, err := FillArgs(fn.Params, req.Args)
	if err != nil {
		return nil, err
	}
	tx := DummyTx(compiled.Program)
	args, err = AutoSignArgs(fn.Params, args, tx)
	if err != nil {
		return nil, err
	}
	sigScript, err := compiled.BuildSigScript(fnName, args)
	if err != nil {
		return nil, err
	}
	tx.Inputs[0].SignatureScript = sigScript

	opcodes, err := debug.OpcodeMetas(compiled.Program)
	if err != nil {
		return nil, err
	}

	opts := debug.Options{MaxSteps: req.MaxSteps}
	opcodeTrace, err := buildOpcodeTrace(tx, compiled, req.Source, opts)
	if err != nil {
		return nil, err
	}
	sourceTrace, err := buildSourceTrace(tx, compiled, req.Source, opts)
	if err != nil {
		return nil, err
	}

	return &Trace{
		Meta: Meta{
			ContractName:    compiled.ContractName,
			FunctionName:    fnName,
			SelectorIndex:   fn.SelectorIndex,
			WithoutSelector: compiled.WithoutSelector,
			CtorArgs:        ctorArgs,
			Args:            args,
			SigScriptHex:    hex.EncodeToString(sigScript),
			SigScriptLen:    len(sigScript),
			ProgramLen:      len(compiled.Program),
			OpcodeCount:     len(opcodes),
			OpcodeSteps:     len(opcodeTrace),
			SourceSteps:     len(sourceTrace),
			GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		},
		Opcodes:     opcodes,
		OpcodeTrace: opcodeTrace,
		SourceTrace: sourceTrace,
		Source:      req.Source,
	}, nil
}

func newSession(tx *bc.Transaction, compiled *compiler.CompiledContract, source string, opts debug.Options) (*debug.Session, error) {
	engine, err := vm.NewEngine(tx, 0)
	if err != nil {
		return nil, err
	}
	return debug.NewSession(engine, compiled, source, opts), nil
}

func snapshot(s *debug.Session, withCalls bool) Snapshot {
	data, alt := s.StacksSnapshot()
	snap := Snapshot{
		PC:          s.PC(),
		ByteOffset:  s.CurrentByteOffset(),
		Mapping:     s.CurrentMapping(),
		IsExecuting: s.IsExecuting(),
		DataStack:   hexStack(data),
		AltStack:    hexStack(alt),
		Variables:   s.Variables(),
	}
	if last, ok := s.LastOpcode(); ok {
		snap.Opcode = last.Op.String()
	}
	if withCalls {
		snap.CallStack = s.CallStack()
	}
	return snap
}

func hexStack(stack [][]byte) []string {
	res := make([]string, len(stack))
	for i, item := range stack {
		res[i] = hex.EncodeToString(item)
	}
	return res
}

// buildOpcodeTrace yields one pre-execution snapshot plus one snapshot
// per visited instruction. On success the final snapshot carries
// is_executing=false; on failure the failing step is appended with its
// error message.
func buildOpcodeTrace(tx *bc.Transaction, compiled *compiler.CompiledContract, source string, opts debug.Options) ([]Snapshot, error) {
	s, err := newSession(tx, compiled, source, opts)
	if err != nil {
		return nil, err
	}
	snaps := []Snapshot{snapshot(s, false)}
	for {
		info, err := s.StepOpcode()
		if err != nil {
			snap := snapshot(s, false)
			snap.Error = err.Error()
			snaps = append(snaps, snap)
			return snaps, nil
		}
		if info == nil {
			snaps[len(snaps)-1].IsExecuting = false
			return snaps, nil
		}
		snaps = append(snaps, snapshot(s, false))
	}
}

// buildSourceTrace aligns to the first mapped instruction, then stops
// at each statement boundary. A terminal snapshot is appended unless
// it duplicates the last boundary snapshot.
func buildSourceTrace(tx *bc.Transaction, compiled *compiler.CompiledContract, source string, opts debug.Options) ([]Snapshot, error) {
	s, err := newSession(tx, compiled, source, opts)
	if err != nil {
		return nil, err
	}
	var snaps []Snapshot
	if err := s.RunToFirstStatement(); err != nil {
		snap := snapshot(s, true)
		snap.Error = err.Error()
		return append(snaps, snap), nil
	}
	snaps = append(snaps, snapshot(s, true))
	for {
		info, err := s.StepInto()
		if err != nil {
			snap := snapshot(s, true)
			snap.Error = err.Error()
			return append(snaps, snap), nil
		}
		if info == nil {
			terminal := snapshot(s, true)
			if len(snaps) > 0 && sameStop(snaps[len(snaps)-1], terminal) {
				snaps[len(snaps)-1].IsExecuting = false
				return snaps, nil
			}
			return append(snaps, terminal), nil
		}
		snaps = append(snaps, snapshot(s, true))
	}
}

// sameStop reports whether two snapshots describe the same execution
// point, ignoring stack and variable contents.
func sameStop(a, b Snapshot) bool {
	if a.PC != b.PC || a.ByteOffset != b.ByteOffset || a.IsExecuting != b.IsExecuting {
		return false
	}
	am, bm := a.Mapping, b.Mapping
	if (am == nil) != (bm == nil) {
		return false
	}
	if am != nil && (am.Sequence != bm.Sequence || am.FrameID != bm.FrameID) {
		return false
	}
	return true
}
