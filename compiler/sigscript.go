package compiler

import (
	"github.com/Manyfestation/silverscript/vm"
)

// BuildSigScript serializes the textual argument values for one
// entrypoint call into the push-only unlocking input the program
// expects: arguments in declaration order, then the selector index
// when the contract dispatches on one.
func (c *CompiledContract) BuildSigScript(function string, args []string) ([]byte, error) {
	sig, ok := c.Function(function)
	if !ok {
		return nil, errorNoSpan("function %s is not in the ABI of %s", function, c.ContractName)
	}
	if !sig.Entrypoint {
		return nil, errorNoSpan("function %s is not an entrypoint", function)
	}
	if len(args) != len(sig.Params) {
		return nil, errorNoSpan("%s takes %d arguments, got %d", function, len(sig.Params), len(args))
	}
	var script []byte
	for i, raw := range args {
		data, err := EncodeValue(sig.Params[i].Type, raw)
		if err != nil {
			return nil, errorNoSpan("argument %s of %s: %s", sig.Params[i].Name, function, err)
		}
		script = append(script, vm.PushdataBytes(data)...)
	}
	if !c.WithoutSelector {
		script = append(script, vm.PushdataInt64(int64(*sig.SelectorIndex))...)
	}
	return script, nil
}
