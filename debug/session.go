/*
Package debug implements the stepping session a contract author drives:
opcode-granular and statement-granular stepping over a compiled
program, with on-demand reconstruction of variables, call frames, and
stack contents from the compiler's debug table.

The session only needs an engine's single-step primitive and read
access to its stacks; vm.Engine satisfies the interface.
*/
package debug

import (
	"github.com/pkg/errors"

	"github.com/Manyfestation/silverscript/compiler"
	"github.com/Manyfestation/silverscript/vm"
)

// Engine is the single-step execution primitive the session drives.
// Step reports whether an instruction remains; Last describes the
// instruction most recently visited, with Executed false for
// instructions inside a branch that was not taken.
type Engine interface {
	Step() (bool, error)
	Last() (vm.StepInfo, bool)
	DataStack() [][]byte
	AltStack() [][]byte
}

// State is the session lifecycle: Running until the engine reports
// completion (Completed) or an execution error (Failed). Both terminal
// states are final.
type State int

const (
	Running State = iota
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrStepLimit ends a session that exceeded Options.MaxSteps.
var ErrStepLimit = errors.New("step limit exceeded")

// Options configures a session.
type Options struct {
	// MaxSteps bounds the total number of opcode steps, guarding
	// against a misbehaving engine. 0 means DefaultMaxSteps.
	MaxSteps int
}

const DefaultMaxSteps = 100000

// Session wraps one engine instance with one compiled contract and its
// source text. A session is single-owner: callers must serialize
// access, and independent sessions share nothing.
type Session struct {
	engine   Engine
	compiled *compiler.CompiledContract
	source   string
	maxSteps int

	state State
	err   error

	steps   int
	last    *vm.StepInfo
	mapping *compiler.Mapping
}

// NewSession starts a session in the Running state, positioned before
// the first instruction.
func NewSession(engine Engine, compiled *compiler.CompiledContract, source string, opts Options) *Session {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Session{
		engine:   engine,
		compiled: compiled,
		source:   source,
		maxSteps: maxSteps,
	}
}

// advance visits one instruction, maintaining the session state and
// the current debug mapping. It returns the visited instruction, or
// ok=false at termination. All stepping operations build on it.
func (s *Session) advance() (info vm.StepInfo, ok bool, err error) {
	if s.state != Running {
		return vm.StepInfo{}, false, s.err
	}
	if s.steps >= s.maxSteps {
		s.state = Failed
		s.err = ErrStepLimit
		return vm.StepInfo{}, false, s.err
	}
	more, err := s.engine.Step()
	if err != nil {
		s.state = Failed
		s.err = err
		log.Debugf("session failed after %d steps: %v", s.steps, err)
		if last, ok := s.engine.Last(); ok {
			s.last = &last
		}
		return vm.StepInfo{}, false, err
	}
	if !more {
		s.state = Completed
		return vm.StepInfo{}, false, nil
	}
	s.steps++
	last, _ := s.engine.Last()
	s.last = &last
	// untaken branches never move the source position
	if last.Executed {
		if m, ok := s.compiled.DebugInfo.MappingAt(last.Offset); ok {
			s.mapping = &m
		}
	}
	return last, true, nil
}

// StepOpcode executes exactly one instruction. It returns the
// instruction just visited while any remain, nil at completion, or the
// engine's error on failure. Calling it on a terminal session is a
// no-op reporting the terminal signal.
func (s *Session) StepOpcode() (*vm.StepInfo, error) {
	info, ok, err := s.advance()
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

// StepInto advances until an executed instruction marks a statement
// boundary, stepping into inlined helper bodies as their bytecode is
// reached. Returns nil at termination.
func (s *Session) StepInto() (*vm.StepInfo, error) {
	for {
		info, ok, err := s.advance()
		if err != nil || !ok {
			return nil, err
		}
		if !info.Executed {
			continue
		}
		if m, mapped := s.compiled.DebugInfo.MappingAt(info.Offset); mapped && m.StatementBoundary {
			return &info, nil
		}
	}
}

// RunToFirstStatement advances past input pushes and any dispatch
// prologue, stopping at the first executed instruction that has a
// debug mapping. It fails if the program terminates or errors first.
func (s *Session) RunToFirstStatement() error {
	for {
		info, ok, err := s.advance()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("program ended before any mapped instruction")
		}
		if info.Executed {
			if _, mapped := s.compiled.DebugInfo.MappingAt(info.Offset); mapped {
				return nil
			}
		}
	}
}

// State returns the session lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Err returns the error that failed the session, if any.
func (s *Session) Err() error {
	return s.err
}

// IsExecuting is true until the session reaches a terminal state.
func (s *Session) IsExecuting() bool {
	return s.state == Running
}

// PC is the number of instructions visited so far.
func (s *Session) PC() int {
	return s.steps
}

// LastOpcode describes the instruction most recently visited, if any.
func (s *Session) LastOpcode() (vm.StepInfo, bool) {
	if s.last == nil {
		return vm.StepInfo{}, false
	}
	return *s.last, true
}

// CurrentMapping is the debug mapping of the most recent executed
// mapped instruction, nil while still in unmapped prologue.
func (s *Session) CurrentMapping() *compiler.Mapping {
	if s.mapping == nil {
		return nil
	}
	m := *s.mapping
	return &m
}

// CurrentByteOffset is the byte offset of the most recently visited
// instruction, 0 before the first step.
func (s *Session) CurrentByteOffset() uint32 {
	if s.last == nil {
		return 0
	}
	return s.last.Offset
}

// StacksSnapshot returns read-only copies of the data and alt stacks.
func (s *Session) StacksSnapshot() (data, alt [][]byte) {
	return s.engine.DataStack(), s.engine.AltStack()
}

// CallStack lists the function names of the inlined frames active at
// the current point, outermost first. Empty while no mapping is
// current.
func (s *Session) CallStack() []string {
	if s.mapping == nil {
		return nil
	}
	var names []string
	id := s.mapping.FrameID
	for {
		f, ok := s.compiled.DebugInfo.Frame(id)
		if !ok {
			break
		}
		names = append([]string{f.FuncName}, names...)
		if f.Parent == nil {
			break
		}
		id = *f.Parent
	}
	return names
}
