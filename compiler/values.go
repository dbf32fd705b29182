package compiler

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/Manyfestation/silverscript/vm"
)

// Type categories collapse the surface types into the three kinds the
// machine distinguishes: numbers, booleans, and byte strings.
const (
	catInt   = "int"
	catBool  = "bool"
	catBytes = "bytes"
)

func typeCategory(typeName string) string {
	switch typeName {
	case "int":
		return catInt
	case "bool":
		return catBool
	default:
		return catBytes
	}
}

// fixedSize returns the required encoded length for fixed-size byte
// types, or -1 when any length is allowed.
func fixedSize(typeName string) int {
	switch typeName {
	case "byte":
		return 1
	case "pubkey":
		return 32
	}
	if n, ok := bytesNSize(typeName); ok {
		return n
	}
	return -1
}

func bytesNSize(typeName string) (int, bool) {
	rest := strings.TrimPrefix(typeName, "bytes")
	if rest == typeName || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// KnownType reports whether typeName is a declarable surface type.
func KnownType(typeName string) bool {
	switch typeName {
	case "int", "bool", "string", "byte", "bytes", "pubkey", "sig", "datasig":
		return true
	}
	_, ok := bytesNSize(typeName)
	return ok
}

// EncodeValue converts the textual form of an argument into its
// machine encoding per the declared type. Byte-typed values are given
// in hex with a 0x prefix; sig and datasig accept any length so that
// externally produced signatures pass through unmodified.
func EncodeValue(typeName, raw string) ([]byte, error) {
	switch typeCategory(typeName) {
	case catInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errorNoSpan("malformed int value %q", raw)
		}
		return vm.Int64Bytes(n), nil
	case catBool:
		switch raw {
		case "true":
			return vm.BoolBytes(true), nil
		case "false":
			return vm.BoolBytes(false), nil
		}
		return nil, errorNoSpan("malformed bool value %q", raw)
	}
	if typeName == "string" {
		return []byte(raw), nil
	}
	if raw == "" {
		raw = "0x"
	}
	if !strings.HasPrefix(raw, "0x") {
		return nil, errorNoSpan("%s value %q: want 0x-prefixed hex", typeName, raw)
	}
	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, errorNoSpan("%s value %q: %s", typeName, raw, err)
	}
	if want := fixedSize(typeName); want >= 0 && len(data) != want {
		return nil, errorNoSpan("%s value is %d bytes, want %d", typeName, len(data), want)
	}
	return data, nil
}
