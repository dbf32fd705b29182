package debug

import (
	"encoding/hex"

	"github.com/Manyfestation/silverscript/vm"
)

// OpcodeMeta statically describes one instruction of a program,
// independent of any execution.
type OpcodeMeta struct {
	Offset uint32 `json:"offset"`
	Name   string `json:"name"`
	Data   string `json:"data,omitempty"`
}

// OpcodeMetas lists every instruction of prog in order.
func OpcodeMetas(prog []byte) ([]OpcodeMeta, error) {
	insts, err := vm.ParseProgram(prog)
	if err != nil {
		return nil, err
	}
	metas := make([]OpcodeMeta, 0, len(insts))
	var off uint32
	for _, inst := range insts {
		m := OpcodeMeta{Offset: off, Name: inst.Op.String()}
		if inst.Op >= vm.OP_DATA_1 && inst.Op <= vm.OP_PUSHDATA4 {
			m.Data = hex.EncodeToString(inst.Data)
		}
		metas = append(metas, m)
		off += inst.Len
	}
	return metas, nil
}
