package vm

// Stack items are byte strings. Integers use the minimal
// little-endian sign-magnitude encoding, at most 8 bytes wide.

const maxNumLen = 8

// BoolBytes encodes a boolean as a stack item.
func BoolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{}
}

// AsBool interprets a stack item as a boolean. Any item that is not
// all zero bytes (modulo a sign bit in the last byte) is true.
func AsBool(b []byte) bool {
	for i := range b {
		if b[i] != 0 {
			// negative zero is false
			if i == len(b)-1 && b[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// Int64Bytes encodes n as a stack item.
func Int64Bytes(n int64) []byte {
	if n == 0 {
		return []byte{}
	}
	negative := n < 0
	un := uint64(n)
	if negative {
		un = uint64(-n)
	}
	var res []byte
	for un > 0 {
		res = append(res, byte(un&0xff))
		un >>= 8
	}
	// If the high bit of the last byte is set, an extra byte carries
	// the sign so the magnitude is not misread as negative.
	if res[len(res)-1]&0x80 != 0 {
		extra := byte(0x00)
		if negative {
			extra = 0x80
		}
		res = append(res, extra)
	} else if negative {
		res[len(res)-1] |= 0x80
	}
	return res
}

// AsInt64 decodes a stack item as an integer, enforcing minimal
// encoding and the 8-byte width limit.
func AsInt64(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > maxNumLen {
		return 0, ErrBadValue
	}
	// Reject paddings: the most significant byte must contribute
	// magnitude or a necessary sign bit.
	if b[len(b)-1]&0x7f == 0 {
		if len(b) == 1 || b[len(b)-2]&0x80 == 0 {
			return 0, ErrBadValue
		}
	}
	var res uint64
	for i, v := range b {
		res |= uint64(v) << (8 * uint(i))
	}
	if b[len(b)-1]&0x80 != 0 {
		res &^= uint64(0x80) << (8 * uint(len(b)-1))
		return -int64(res), nil
	}
	return int64(res), nil
}
