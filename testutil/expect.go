// Package testutil provides shared test helpers.
package testutil

import (
	"reflect"
	"runtime"
	"testing"

	"github.com/Manyfestation/silverscript/vm"
)

func ExpectEqual(t testing.TB, actual, expected interface{}, msg string) {
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("%s: got %v, expected %v\n%s", msg, actual, expected, stackTrace())
	}
}

// ExpectScriptEqual compares two programs, reporting mismatches in
// disassembled form.
func ExpectScriptEqual(t testing.TB, actual, expected []byte, msg string) {
	if !reflect.DeepEqual(expected, actual) {
		expectedStr, _ := vm.Disassemble(expected)
		actualStr, _ := vm.Disassemble(actual)
		t.Errorf("%s: got [%s], expected [%s]\n%s", msg, actualStr, expectedStr, stackTrace())
	}
}

func FatalErr(t testing.TB, err error) {
	t.Helper()
	t.Fatalf("%+v", err)
}

func stackTrace() []byte {
	buf := make([]byte, 16384)
	n := runtime.Stack(buf, false)
	return buf[:n]
}
