package vm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Op is a single opcode of the script machine.
type Op uint8

func (op Op) String() string {
	return ops[op].name
}

// Instruction is one parsed opcode plus any data it pushes.
type Instruction struct {
	Op   Op
	Len  uint32
	Data []byte
}

const (
	OP_FALSE Op = 0x00
	OP_0     Op = 0x00 // synonym

	OP_DATA_1  Op = 0x01
	OP_DATA_75 Op = 0x4b

	OP_PUSHDATA1 Op = 0x4c
	OP_PUSHDATA2 Op = 0x4d
	OP_PUSHDATA4 Op = 0x4e
	OP_1NEGATE   Op = 0x4f

	OP_1    Op = 0x51
	OP_TRUE Op = 0x51 // synonym
	OP_16   Op = 0x60

	OP_NOP Op = 0x61

	OP_IF     Op = 0x63
	OP_NOTIF  Op = 0x64
	OP_ELSE   Op = 0x67
	OP_ENDIF  Op = 0x68
	OP_VERIFY Op = 0x69
	OP_FAIL   Op = 0x6a

	OP_TOALTSTACK   Op = 0x6b
	OP_FROMALTSTACK Op = 0x6c
	OP_2DROP        Op = 0x6d
	OP_2DUP         Op = 0x6e
	OP_IFDUP        Op = 0x73
	OP_DEPTH        Op = 0x74
	OP_DROP         Op = 0x75
	OP_DUP          Op = 0x76
	OP_NIP          Op = 0x77
	OP_OVER         Op = 0x78
	OP_PICK         Op = 0x79
	OP_ROLL         Op = 0x7a
	OP_ROT          Op = 0x7b
	OP_SWAP         Op = 0x7c
	OP_TUCK         Op = 0x7d

	OP_CAT  Op = 0x7e
	OP_SIZE Op = 0x82

	OP_EQUAL       Op = 0x87
	OP_EQUALVERIFY Op = 0x88

	OP_1ADD               Op = 0x8b
	OP_1SUB               Op = 0x8c
	OP_NEGATE             Op = 0x8f
	OP_ABS                Op = 0x90
	OP_NOT                Op = 0x91
	OP_0NOTEQUAL          Op = 0x92
	OP_ADD                Op = 0x93
	OP_SUB                Op = 0x94
	OP_MUL                Op = 0x95
	OP_DIV                Op = 0x96
	OP_MOD                Op = 0x97
	OP_BOOLAND            Op = 0x9a
	OP_BOOLOR             Op = 0x9b
	OP_NUMEQUAL           Op = 0x9c
	OP_NUMEQUALVERIFY     Op = 0x9d
	OP_NUMNOTEQUAL        Op = 0x9e
	OP_LESSTHAN           Op = 0x9f
	OP_GREATERTHAN        Op = 0xa0
	OP_LESSTHANOREQUAL    Op = 0xa1
	OP_GREATERTHANOREQUAL Op = 0xa2
	OP_MIN                Op = 0xa3
	OP_MAX                Op = 0xa4
	OP_WITHIN             Op = 0xa5

	OP_SHA256  Op = 0xa8
	OP_BLAKE2B Op = 0xaa

	OP_CHECKSIG     Op = 0xac
	OP_CHECKDATASIG Op = 0xba
)

type opInfo struct {
	op   Op
	name string
	fn   func(*Engine) error
}

var (
	ops = [256]opInfo{
		OP_FALSE: {OP_FALSE, "FALSE", opFalse},

		// sic: the PUSHDATA ops all share an implementation
		OP_PUSHDATA1: {OP_PUSHDATA1, "PUSHDATA1", opPushdata},
		OP_PUSHDATA2: {OP_PUSHDATA2, "PUSHDATA2", opPushdata},
		OP_PUSHDATA4: {OP_PUSHDATA4, "PUSHDATA4", opPushdata},

		OP_1NEGATE: {OP_1NEGATE, "1NEGATE", op1Negate},

		OP_NOP: {OP_NOP, "NOP", opNop},

		OP_IF:     {OP_IF, "IF", opIf},
		OP_NOTIF:  {OP_NOTIF, "NOTIF", opNotIf},
		OP_ELSE:   {OP_ELSE, "ELSE", opElse},
		OP_ENDIF:  {OP_ENDIF, "ENDIF", opEndif},
		OP_VERIFY: {OP_VERIFY, "VERIFY", opVerify},
		OP_FAIL:   {OP_FAIL, "FAIL", opFail},

		OP_TOALTSTACK:   {OP_TOALTSTACK, "TOALTSTACK", opToAltStack},
		OP_FROMALTSTACK: {OP_FROMALTSTACK, "FROMALTSTACK", opFromAltStack},
		OP_2DROP:        {OP_2DROP, "2DROP", op2Drop},
		OP_2DUP:         {OP_2DUP, "2DUP", op2Dup},
		OP_IFDUP:        {OP_IFDUP, "IFDUP", opIfDup},
		OP_DEPTH:        {OP_DEPTH, "DEPTH", opDepth},
		OP_DROP:         {OP_DROP, "DROP", opDrop},
		OP_DUP:          {OP_DUP, "DUP", opDup},
		OP_NIP:          {OP_NIP, "NIP", opNip},
		OP_OVER:         {OP_OVER, "OVER", opOver},
		OP_PICK:         {OP_PICK, "PICK", opPick},
		OP_ROLL:         {OP_ROLL, "ROLL", opRoll},
		OP_ROT:          {OP_ROT, "ROT", opRot},
		OP_SWAP:         {OP_SWAP, "SWAP", opSwap},
		OP_TUCK:         {OP_TUCK, "TUCK", opTuck},

		OP_CAT:  {OP_CAT, "CAT", opCat},
		OP_SIZE: {OP_SIZE, "SIZE", opSize},

		OP_EQUAL:       {OP_EQUAL, "EQUAL", opEqual},
		OP_EQUALVERIFY: {OP_EQUALVERIFY, "EQUALVERIFY", opEqualVerify},

		OP_1ADD:               {OP_1ADD, "1ADD", op1Add},
		OP_1SUB:               {OP_1SUB, "1SUB", op1Sub},
		OP_NEGATE:             {OP_NEGATE, "NEGATE", opNegate},
		OP_ABS:                {OP_ABS, "ABS", opAbs},
		OP_NOT:                {OP_NOT, "NOT", opNot},
		OP_0NOTEQUAL:          {OP_0NOTEQUAL, "0NOTEQUAL", op0NotEqual},
		OP_ADD:                {OP_ADD, "ADD", opAdd},
		OP_SUB:                {OP_SUB, "SUB", opSub},
		OP_MUL:                {OP_MUL, "MUL", opMul},
		OP_DIV:                {OP_DIV, "DIV", opDiv},
		OP_MOD:                {OP_MOD, "MOD", opMod},
		OP_BOOLAND:            {OP_BOOLAND, "BOOLAND", opBoolAnd},
		OP_BOOLOR:             {OP_BOOLOR, "BOOLOR", opBoolOr},
		OP_NUMEQUAL:           {OP_NUMEQUAL, "NUMEQUAL", opNumEqual},
		OP_NUMEQUALVERIFY:     {OP_NUMEQUALVERIFY, "NUMEQUALVERIFY", opNumEqualVerify},
		OP_NUMNOTEQUAL:        {OP_NUMNOTEQUAL, "NUMNOTEQUAL", opNumNotEqual},
		OP_LESSTHAN:           {OP_LESSTHAN, "LESSTHAN", opLessThan},
		OP_GREATERTHAN:        {OP_GREATERTHAN, "GREATERTHAN", opGreaterThan},
		OP_LESSTHANOREQUAL:    {OP_LESSTHANOREQUAL, "LESSTHANOREQUAL", opLessThanOrEqual},
		OP_GREATERTHANOREQUAL: {OP_GREATERTHANOREQUAL, "GREATERTHANOREQUAL", opGreaterThanOrEqual},
		OP_MIN:                {OP_MIN, "MIN", opMin},
		OP_MAX:                {OP_MAX, "MAX", opMax},
		OP_WITHIN:             {OP_WITHIN, "WITHIN", opWithin},

		OP_SHA256:  {OP_SHA256, "SHA256", opSha256},
		OP_BLAKE2B: {OP_BLAKE2B, "BLAKE2B", opBlake2b},

		OP_CHECKSIG:     {OP_CHECKSIG, "CHECKSIG", opCheckSig},
		OP_CHECKDATASIG: {OP_CHECKDATASIG, "CHECKDATASIG", opCheckDataSig},
	}

	opsByName map[string]opInfo
)

func init() {
	for i := 1; i <= 75; i++ {
		ops[i] = opInfo{Op(i), fmt.Sprintf("DATA_%d", i), opPushdata}
	}
	for i := uint8(0); i <= 15; i++ {
		op := uint8(OP_1) + i
		ops[op] = opInfo{Op(op), fmt.Sprintf("%d", i+1), opPushdata}
	}

	opsByName = make(map[string]opInfo)
	for _, info := range ops {
		if info.name != "" {
			opsByName[info.name] = info
		}
	}
	opsByName["0"] = ops[OP_FALSE]
	opsByName["TRUE"] = ops[OP_1]

	for i := 0; i <= 255; i++ {
		if ops[i].name == "" {
			ops[i] = opInfo{Op(i), fmt.Sprintf("INVALIDx%02x", i), opInvalid}
		}
	}
}

func opInvalid(*Engine) error {
	return ErrUnknownOpcode
}

// IsPush reports whether op only pushes data, making it legal in an
// unlocking input.
func IsPush(op Op) bool {
	return op <= OP_PUSHDATA4 || op == OP_1NEGATE || (op >= OP_1 && op <= OP_16)
}

// ParseOp parses the op at position pc in prog, returning the parsed
// instruction (opcode plus any associated data).
func ParseOp(prog []byte, pc uint32) (inst Instruction, err error) {
	if len(prog) > math.MaxInt32 {
		return inst, ErrLongProgram
	}
	l := uint32(len(prog))
	if pc >= l {
		return inst, ErrShortProgram
	}
	opcode := Op(prog[pc])
	inst.Op = opcode
	inst.Len = 1
	if opcode >= OP_1 && opcode <= OP_16 {
		inst.Data = []byte{uint8(opcode-OP_1) + 1}
		return inst, nil
	}
	if opcode >= OP_DATA_1 && opcode <= OP_DATA_75 {
		inst.Len += uint32(opcode - OP_DATA_1 + 1)
		if pc+inst.Len > l {
			return inst, ErrShortProgram
		}
		inst.Data = prog[pc+1 : pc+inst.Len]
		return inst, nil
	}
	switch opcode {
	case OP_PUSHDATA1:
		if pc+2 > l {
			return inst, ErrShortProgram
		}
		n := uint32(prog[pc+1])
		inst.Len += 1 + n
		if pc+inst.Len > l {
			return inst, ErrShortProgram
		}
		inst.Data = prog[pc+2 : pc+inst.Len]
	case OP_PUSHDATA2:
		if pc+3 > l {
			return inst, ErrShortProgram
		}
		n := uint32(binary.LittleEndian.Uint16(prog[pc+1 : pc+3]))
		inst.Len += 2 + n
		if pc+inst.Len > l {
			return inst, ErrShortProgram
		}
		inst.Data = prog[pc+3 : pc+inst.Len]
	case OP_PUSHDATA4:
		if pc+5 > l {
			return inst, ErrShortProgram
		}
		n := binary.LittleEndian.Uint32(prog[pc+1 : pc+5])
		if n > l {
			return inst, ErrShortProgram
		}
		inst.Len += 4 + n
		if pc+inst.Len > l {
			return inst, ErrShortProgram
		}
		inst.Data = prog[pc+5 : pc+inst.Len]
	}
	return inst, nil
}

// ParseProgram parses prog into its instruction sequence.
func ParseProgram(prog []byte) ([]Instruction, error) {
	var result []Instruction
	for pc := uint32(0); pc < uint32(len(prog)); { // pc advances by inst.Len
		inst, err := ParseOp(prog, pc)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
		pc += inst.Len
	}
	return result, nil
}
