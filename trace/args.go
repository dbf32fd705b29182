package trace

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Manyfestation/silverscript/compiler"
)

// DefaultRawValue is the canonical zero value for a declared type, in
// the textual form the argument encoders accept.
func DefaultRawValue(typeName string) string {
	switch typeName {
	case "int":
		return "0"
	case "bool":
		return "false"
	case "string":
		return ""
	case "bytes":
		return "0x"
	case "byte":
		return "0x00"
	case "pubkey":
		return "0x" + strings.Repeat("00", 32)
	case "sig", "datasig":
		return "0x" + strings.Repeat("00", 64)
	}
	if n, ok := bytesNSize(typeName); ok {
		return "0x" + strings.Repeat("00", n)
	}
	return ""
}

func bytesNSize(typeName string) (int, bool) {
	rest := strings.TrimPrefix(typeName, "bytes")
	if rest == typeName || rest == "" {
		return 0, false
	}
	n := 0
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// FillArgs trims the supplied argument values and substitutes per-type
// defaults for missing or blank ones, so a trace can run with any
// subset of arguments given.
func FillArgs(params []compiler.ABIParam, supplied []string) ([]string, error) {
	if len(supplied) > len(params) {
		return nil, errors.Errorf("got %d arguments for %d parameters", len(supplied), len(params))
	}
	filled := make([]string, len(params))
	for i, p := range params {
		v := ""
		if i < len(supplied) {
			v = strings.TrimSpace(supplied[i])
		}
		if v == "" {
			v = DefaultRawValue(p.Type)
		}
		filled[i] = v
	}
	return filled, nil
}
