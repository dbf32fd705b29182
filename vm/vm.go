/*
Package vm implements the stack machine that compiled contracts run
on. Programs are sequences of opcodes operating on a data stack and an
alt stack of byte strings. Execution is single-stepped so a debugger
can observe every instruction, including instructions inside branches
that are not taken.

The unlocking input of a transaction is push-only and is applied to
the data stack when the engine is constructed; stepping covers the
program itself, one instruction per step.
*/
package vm

import (
	"github.com/Manyfestation/silverscript/bc"
)

// RunLimit bounds the total cost of executing one input.
const RunLimit = 50000

// StepInfo describes the instruction most recently visited by Step.
// Executed is false for instructions inside a conditional branch that
// was not taken; such instructions are visited but have no effect.
type StepInfo struct {
	Offset   uint32
	Op       Op
	Data     []byte
	Executed bool
}

// Engine executes the script public key of one transaction input's
// spent output, over a data stack seeded with the input's signature
// script pushes.
type Engine struct {
	tx         *bc.Transaction
	inputIndex int
	sigHasher  *bc.SigHasher

	program []byte
	pc      uint32

	data      []byte
	condStack []bool

	dataStack [][]byte
	altStack  [][]byte

	runLimit int64

	last     StepInfo
	hasLast  bool
	finished bool
	err      error
}

// NewEngine prepares execution of the given input. The input's
// UTXOEntry must be populated, and its signature script must contain
// only push operations; those pushes are applied immediately.
func NewEngine(tx *bc.Transaction, inputIndex int) (*Engine, error) {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, ErrBadValue
	}
	in := tx.Inputs[inputIndex]
	if in.UTXOEntry == nil {
		return nil, ErrBadValue
	}
	e := &Engine{
		tx:         tx,
		inputIndex: inputIndex,
		sigHasher:  bc.NewSigHasher(tx),
		program:    in.UTXOEntry.ScriptPublicKey,
		runLimit:   RunLimit,
	}
	insts, err := ParseProgram(in.SignatureScript)
	if err != nil {
		return nil, err
	}
	for _, inst := range insts {
		if !IsPush(inst.Op) {
			return nil, ErrNotPushOnly
		}
		if err := e.applyCost(1 + int64(len(inst.Data))); err != nil {
			return nil, err
		}
		switch {
		case inst.Op == OP_1NEGATE:
			e.push(Int64Bytes(-1))
		case inst.Data == nil:
			e.push([]byte{})
		default:
			d := make([]byte, len(inst.Data))
			copy(d, inst.Data)
			e.push(d)
		}
	}
	return e, nil
}

func (e *Engine) executing() bool {
	for _, v := range e.condStack {
		if !v {
			return false
		}
	}
	return true
}

func (e *Engine) applyCost(n int64) error {
	e.runLimit -= n
	if e.runLimit < 0 {
		return ErrRunLimitExceeded
	}
	return nil
}

// Step visits the next instruction. It returns true while instructions
// remain; false means the program has completed and the final result
// checks passed. Instructions in untaken branches are still visited,
// at unit cost, with no other effect.
func (e *Engine) Step() (bool, error) {
	if e.err != nil {
		return false, e.err
	}
	if e.finished {
		return false, nil
	}
	if e.pc >= uint32(len(e.program)) {
		e.finished = true
		e.err = e.finalize()
		return false, e.err
	}

	inst, err := ParseOp(e.program, e.pc)
	if err != nil {
		e.err = err
		return false, err
	}
	offset := e.pc
	e.data = inst.Data
	wasExecuting := e.executing()
	log.Tracef("step %d %s executing=%v", offset, inst.Op, wasExecuting)

	switch {
	case wasExecuting:
		err = e.applyCost(1 + int64(len(inst.Data)))
		if err == nil {
			err = ops[inst.Op].fn(e)
		}
	case inst.Op == OP_IF || inst.Op == OP_NOTIF:
		// keep nesting depth without consuming a condition
		e.condStack = append(e.condStack, false)
		err = e.applyCost(1)
	case inst.Op == OP_ELSE:
		err = opElse(e)
		if err == nil {
			err = e.applyCost(1)
		}
	case inst.Op == OP_ENDIF:
		err = opEndif(e)
		if err == nil {
			err = e.applyCost(1)
		}
	default:
		err = e.applyCost(1)
	}

	e.last = StepInfo{
		Offset:   offset,
		Op:       inst.Op,
		Data:     inst.Data,
		Executed: wasExecuting,
	}
	e.hasLast = true
	if err != nil {
		e.err = err
		return false, err
	}
	e.pc = offset + inst.Len
	if e.pc >= uint32(len(e.program)) {
		// completion is detected eagerly so the final step already
		// reports the engine as done
		e.finished = true
		if err := e.finalize(); err != nil {
			e.err = err
			return false, err
		}
		return true, nil
	}
	return true, nil
}

func (e *Engine) finalize() error {
	if len(e.condStack) > 0 {
		return ErrNonEmptyCondStack
	}
	if len(e.dataStack) == 0 || !AsBool(e.dataStack[len(e.dataStack)-1]) {
		return ErrFalseVMResult
	}
	return nil
}

// Run steps the engine to completion.
func (e *Engine) Run() error {
	for {
		more, err := e.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Last returns the instruction most recently visited, if any.
func (e *Engine) Last() (StepInfo, bool) {
	return e.last, e.hasLast
}

// Position returns the byte offset of the next instruction. ok is
// false once the program has completed or failed.
func (e *Engine) Position() (offset uint32, ok bool) {
	if e.err != nil || e.finished || e.pc >= uint32(len(e.program)) {
		return 0, false
	}
	return e.pc, true
}

// Done reports whether execution has ended, successfully or not.
func (e *Engine) Done() bool {
	return e.finished || e.err != nil
}

// Err returns the error that ended execution, if any.
func (e *Engine) Err() error {
	return e.err
}

// DataStack returns the current data stack, bottom first.
func (e *Engine) DataStack() [][]byte {
	return append([][]byte{}, e.dataStack...)
}

// AltStack returns the current alt stack, bottom first.
func (e *Engine) AltStack() [][]byte {
	return append([][]byte{}, e.altStack...)
}
