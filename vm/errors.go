package vm

import "errors"

var (
	ErrAltStackUnderflow  = errors.New("alt stack underflow")
	ErrBadValue           = errors.New("bad value")
	ErrCondStack          = errors.New("ELSE or ENDIF without matching IF")
	ErrDataStackUnderflow = errors.New("data stack underflow")
	ErrDivZero            = errors.New("division by zero")
	ErrFalseVMResult      = errors.New("false result for executed program")
	ErrLongProgram        = errors.New("program size exceeds maxint32")
	ErrNonEmptyCondStack  = errors.New("unbalanced conditional at end of program")
	ErrNotPushOnly        = errors.New("signature script is not push only")
	ErrRange              = errors.New("range error")
	ErrReturn             = errors.New("FAIL executed")
	ErrRunLimitExceeded   = errors.New("run limit exceeded")
	ErrShortProgram       = errors.New("unexpected end of program")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrVerifyFailed       = errors.New("VERIFY failed")
)
