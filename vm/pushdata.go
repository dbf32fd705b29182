package vm

import "encoding/binary"

func opFalse(e *Engine) error {
	e.push([]byte{})
	return nil
}

func op1Negate(e *Engine) error {
	e.pushInt64(-1)
	return nil
}

func opPushdata(e *Engine) error {
	d := make([]byte, len(e.data))
	copy(d, e.data)
	e.push(d)
	return nil
}

// PushdataBytes encodes a push of data using the shortest form.
func PushdataBytes(in []byte) []byte {
	l := len(in)
	if l == 0 {
		return []byte{byte(OP_FALSE)}
	}
	if l <= 75 {
		return append([]byte{byte(OP_DATA_1) + byte(l) - 1}, in...)
	}
	if l < 1<<8 {
		return append([]byte{byte(OP_PUSHDATA1), byte(l)}, in...)
	}
	if l < 1<<16 {
		var b [3]byte
		b[0] = byte(OP_PUSHDATA2)
		binary.LittleEndian.PutUint16(b[1:], uint16(l))
		return append(b[:], in...)
	}
	var b [5]byte
	b[0] = byte(OP_PUSHDATA4)
	binary.LittleEndian.PutUint32(b[1:], uint32(l))
	return append(b[:], in...)
}

// PushdataInt64 encodes a push of num using the shortest form.
func PushdataInt64(num int64) []byte {
	if num == 0 {
		return []byte{byte(OP_FALSE)}
	}
	if num >= 1 && num <= 16 {
		return []byte{byte(OP_1) + byte(num) - 1}
	}
	if num == -1 {
		return []byte{byte(OP_1NEGATE)}
	}
	return PushdataBytes(Int64Bytes(num))
}
