package ast

import (
	"reflect"
	"strings"
	"testing"
)

const debugPoC = `pragma silverscript ^0.1.0;

contract DebugPoC(int const) {
    function bump(int x) {
        int y = x + 1;
        require(y > 0);
    }

    entrypoint function main(int a, int b) {
        int seed = a + const;
        bump(seed);
        require(b >= 0);
    }
}
`

func TestParseContract(t *testing.T) {
	c, err := ParseContract(debugPoC)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "DebugPoC" {
		t.Errorf("contract name = %q, want DebugPoC", c.Name)
	}
	if len(c.Params) != 1 || c.Params[0].Name != "const" || c.Params[0].TypeName != "int" {
		t.Errorf("constructor params = %v", c.Params)
	}
	if len(c.Functions) != 2 {
		t.Fatalf("got %d functions, want 2", len(c.Functions))
	}

	bump := c.Functions[0]
	if bump.Name != "bump" || bump.Entrypoint {
		t.Errorf("functions[0] = %q entrypoint=%v, want helper bump", bump.Name, bump.Entrypoint)
	}
	if len(bump.Body) != 2 {
		t.Fatalf("bump has %d statements, want 2", len(bump.Body))
	}
	decl, ok := bump.Body[0].(*DeclStatement)
	if !ok {
		t.Fatalf("bump.Body[0] is %T, want *DeclStatement", bump.Body[0])
	}
	if decl.TypeName != "int" || decl.VarName != "y" {
		t.Errorf("decl = %s %s", decl.TypeName, decl.VarName)
	}
	if decl.Span.Line != 5 {
		t.Errorf("decl span line = %d, want 5", decl.Span.Line)
	}

	main := c.Functions[1]
	if !main.Entrypoint {
		t.Error("main is not flagged entrypoint")
	}
	if _, ok := main.Body[1].(*CallStatement); !ok {
		t.Errorf("main.Body[1] is %T, want *CallStatement", main.Body[1])
	}

	eps := c.Entrypoints()
	if len(eps) != 1 || eps[0].Name != "main" {
		t.Errorf("entrypoints = %v", eps)
	}
}

func TestParseExpressions(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"int v = 1 + 2 * 3;", "(1 + (2 * 3))"},
		{"int v = (1 + 2) * 3;", "((1 + 2) * 3)"},
		{"bool v = a < b && c >= d;", "((a < b) && (c >= d))"},
		{"bool v = !done || x != 0;", "(!done || (x != 0))"},
		{"int v = -x % 7;", "(-x % 7)"},
		{"bytes v = sha256(preimage);", "sha256(preimage)"},
		{"bool v = checkSig(s, pk);", "checkSig(s, pk)"},
		{"bytes4 v = 0xdeadbeef;", "0xdeadbeef"},
		{`string v = "hi";`, `"hi"`},
	}
	for _, tc := range cases {
		src := "contract C() { entrypoint function f() { " + tc.src + " } }"
		c, err := ParseContract(src)
		if err != nil {
			t.Errorf("%s: %v", tc.src, err)
			continue
		}
		decl := c.Functions[0].Body[0].(*DeclStatement)
		if got := decl.Value.String(); got != tc.want {
			t.Errorf("%s: parsed %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src     string
		wantMsg string
	}{
		{"contract {", "expected identifier"},
		{"contract C() { function f( { } }", "expected identifier"},
		{"contract C() { function f() { require(x; } }", `expected ")"`},
		{"contract C() { function f() { int x = ; } }", "expected expression"},
		{"contract C() { function f() { int x = 0xabc; } }", "odd length"},
		{"pragma silverscript", "unterminated pragma"},
		{"contract C() { function f() { int x = 1 } }", `expected ";"`},
	}
	for _, tc := range cases {
		_, err := ParseContract(tc.src)
		if err == nil {
			t.Errorf("%s: no error, want %q", tc.src, tc.wantMsg)
			continue
		}
		perr, ok := err.(*ParseError)
		if !ok {
			t.Errorf("%s: error is %T, want *ParseError", tc.src, err)
			continue
		}
		if !strings.Contains(perr.Msg, tc.wantMsg) {
			t.Errorf("%s: error %q, want substring %q", tc.src, perr.Msg, tc.wantMsg)
		}
		if perr.Span.Line == 0 {
			t.Errorf("%s: error span has no line", tc.src)
		}
	}
}

func TestSpanString(t *testing.T) {
	cases := []struct {
		span Span
		want string
	}{
		{Span{3, 7, 3, 7}, "3:7"},
		{Span{3, 7, 4, 1}, "3:7-4:1"},
	}
	for _, tc := range cases {
		if got := tc.span.String(); got != tc.want {
			t.Errorf("Span%v.String() = %q, want %q", tc.span, got, tc.want)
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	a, err := ParseContract(debugPoC)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseContract(debugPoC)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("parsing the same source twice produced different trees")
	}
}
