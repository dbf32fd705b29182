package compiler

import "github.com/Manyfestation/silverscript/vm"

type builtin struct {
	name   string
	args   []string // argument type categories
	result string
	ops    []vm.Op
}

var builtins = []builtin{
	{"sha256", []string{catBytes}, catBytes, []vm.Op{vm.OP_SHA256}},
	{"blake2b", []string{catBytes}, catBytes, []vm.Op{vm.OP_BLAKE2B}},
	{"size", []string{catBytes}, catInt, []vm.Op{vm.OP_SIZE, vm.OP_NIP}},
	{"min", []string{catInt, catInt}, catInt, []vm.Op{vm.OP_MIN}},
	{"max", []string{catInt, catInt}, catInt, []vm.Op{vm.OP_MAX}},
	{"abs", []string{catInt}, catInt, []vm.Op{vm.OP_ABS}},
	{"within", []string{catInt, catInt, catInt}, catBool, []vm.Op{vm.OP_WITHIN}},
	{"checkSig", []string{catBytes, catBytes}, catBool, []vm.Op{vm.OP_CHECKSIG}},
	{"checkDataSig", []string{catBytes, catBytes, catBytes}, catBool, []vm.Op{vm.OP_CHECKDATASIG}},
}

func lookupBuiltin(name string) *builtin {
	for i := range builtins {
		if builtins[i].name == name {
			return &builtins[i]
		}
	}
	return nil
}

var binaryOps = map[string]struct {
	operands string // operand type category
	result   string
	ops      []vm.Op
}{
	"+":  {catInt, catInt, []vm.Op{vm.OP_ADD}},
	"-":  {catInt, catInt, []vm.Op{vm.OP_SUB}},
	"*":  {catInt, catInt, []vm.Op{vm.OP_MUL}},
	"/":  {catInt, catInt, []vm.Op{vm.OP_DIV}},
	"%":  {catInt, catInt, []vm.Op{vm.OP_MOD}},
	"<":  {catInt, catBool, []vm.Op{vm.OP_LESSTHAN}},
	"<=": {catInt, catBool, []vm.Op{vm.OP_LESSTHANOREQUAL}},
	">":  {catInt, catBool, []vm.Op{vm.OP_GREATERTHAN}},
	">=": {catInt, catBool, []vm.Op{vm.OP_GREATERTHANOREQUAL}},
	"&&": {catBool, catBool, []vm.Op{vm.OP_BOOLAND}},
	"||": {catBool, catBool, []vm.Op{vm.OP_BOOLOR}},
}
