package trace

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poc = `pragma silverscript ^0.1.0;

contract DebugPoC(int limit) {
    function bump(int v) {
        require(v + 1 > 0);
    }

    entrypoint function main(int a, int b) {
        int sum = a + b;
        require(sum < limit);
        bump(sum);
    }
}`

const scenario = `contract Scenario() {
    function bump(int v) {
        require(v + 1 > 0);
    }

    entrypoint function main(int a, int b) {
        int sum = a + b;
        require(sum >= 0);
        bump(sum);
    }
}`

func TestOpcodeTraceShape(t *testing.T) {
	tr, err := Build(Request{Source: poc, CtorArgs: []string{"10"}, Args: []string{"1", "2"}})
	require.NoError(t, err)

	assert.Equal(t, "DebugPoC", tr.Meta.ContractName)
	assert.Equal(t, "main", tr.Meta.FunctionName)
	assert.True(t, tr.Meta.WithoutSelector)
	assert.Nil(t, tr.Meta.SelectorIndex)
	assert.Equal(t, len(tr.Opcodes), tr.Meta.OpcodeCount)

	// one pre-execution snapshot plus one per instruction
	require.Len(t, tr.OpcodeTrace, tr.Meta.OpcodeCount+1)
	for _, snap := range tr.OpcodeTrace {
		assert.Empty(t, snap.Error)
	}
	assert.True(t, tr.OpcodeTrace[0].IsExecuting)
	assert.Empty(t, tr.OpcodeTrace[0].Opcode)
	final := tr.OpcodeTrace[len(tr.OpcodeTrace)-1]
	assert.False(t, final.IsExecuting)
}

func TestSourceTraceShape(t *testing.T) {
	tr, err := Build(Request{Source: poc, CtorArgs: []string{"10"}, Args: []string{"1", "2"}})
	require.NoError(t, err)

	// first statement, then require, the bump call, the require inside
	// bump, and the terminal snapshot
	require.Len(t, tr.SourceTrace, 5)
	for _, snap := range tr.SourceTrace {
		assert.Empty(t, snap.Error)
	}
	assert.Equal(t, []string{"main"}, tr.SourceTrace[0].CallStack)
	assert.Equal(t, []string{"main", "bump"}, tr.SourceTrace[3].CallStack)
	assert.False(t, tr.SourceTrace[4].IsExecuting)

	var seq uint32
	for _, snap := range tr.SourceTrace {
		if snap.Mapping == nil {
			continue
		}
		require.GreaterOrEqual(t, snap.Mapping.Sequence, seq)
		seq = snap.Mapping.Sequence
	}
}

func TestEndToEndScenario(t *testing.T) {
	tr, err := Build(Request{Source: scenario, Args: []string{"1", "2"}})
	require.NoError(t, err)

	assert.True(t, tr.Meta.WithoutSelector)
	assert.Nil(t, tr.Meta.SelectorIndex)
	for _, snap := range tr.OpcodeTrace {
		assert.Empty(t, snap.Error)
	}
	assert.False(t, tr.OpcodeTrace[len(tr.OpcodeTrace)-1].IsExecuting)
}

func TestExecutionErrorCaptured(t *testing.T) {
	tr, err := Build(Request{Source: poc, CtorArgs: []string{"10"}, Args: []string{"7", "8"}})
	require.NoError(t, err, "execution failures must not abort trace production")

	final := tr.OpcodeTrace[len(tr.OpcodeTrace)-1]
	assert.NotEmpty(t, final.Error)
	assert.False(t, final.IsExecuting)

	last := tr.SourceTrace[len(tr.SourceTrace)-1]
	assert.NotEmpty(t, last.Error)
}

func TestDefaultFill(t *testing.T) {
	src := `contract T() {
		entrypoint function f(int x, bytes4 y) {
			require(x == 0);
			require(y == 0x00000000);
		}
	}`
	tr, err := Build(Request{Source: src})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0x00000000"}, tr.Meta.Args)
	assert.Empty(t, tr.OpcodeTrace[len(tr.OpcodeTrace)-1].Error)
}

func TestBlankArgsDefaultFill(t *testing.T) {
	src := `contract T() {
		entrypoint function f(int x, bytes4 y) {
			require(x == 0);
			require(y == 0x00000000);
		}
	}`
	tr, err := Build(Request{Source: src, Args: []string{"", "  "}})
	require.NoError(t, err, "blank argument values must fall back to defaults")
	assert.Equal(t, []string{"0", "0x00000000"}, tr.Meta.Args)
	assert.Empty(t, tr.OpcodeTrace[len(tr.OpcodeTrace)-1].Error)
}

func TestAutoSign(t *testing.T) {
	src := `contract T() {
		entrypoint function f(sig s) {
			require(size(s) == 65);
		}
	}`
	key := "0x" + strings.Repeat("00", 31) + "01"
	tr, err := Build(Request{Source: src, Args: []string{key}})
	require.NoError(t, err)

	signed := tr.Meta.Args[0]
	require.NotEqual(t, key, signed)
	data, err := hex.DecodeString(strings.TrimPrefix(signed, "0x"))
	require.NoError(t, err)
	assert.Len(t, data, 65)
	assert.Empty(t, tr.OpcodeTrace[len(tr.OpcodeTrace)-1].Error)
}

func TestAutoSignPassthrough(t *testing.T) {
	src := `contract T() {
		entrypoint function f(sig s) {
			require(size(s) == 20);
		}
	}`
	raw := "0x" + strings.Repeat("ab", 20)
	tr, err := Build(Request{Source: src, Args: []string{raw}})
	require.NoError(t, err)
	assert.Equal(t, raw, tr.Meta.Args[0])
	assert.Empty(t, tr.OpcodeTrace[len(tr.OpcodeTrace)-1].Error)
}

func TestAutoSignZeroKeyPassthrough(t *testing.T) {
	src := `contract T() {
		entrypoint function f(sig s) {
			require(size(s) == 32);
		}
	}`
	// 32 bytes, but the zero scalar is not a valid private key
	raw := "0x" + strings.Repeat("00", 32)
	tr, err := Build(Request{Source: src, Args: []string{raw}})
	require.NoError(t, err)
	assert.Equal(t, raw, tr.Meta.Args[0])
	assert.Empty(t, tr.OpcodeTrace[len(tr.OpcodeTrace)-1].Error)
}

func TestDeterminism(t *testing.T) {
	req := Request{Source: poc, CtorArgs: []string{"10"}, Args: []string{"1", "2"}}
	a, err := Build(req)
	require.NoError(t, err)
	b, err := Build(req)
	require.NoError(t, err)
	a.Meta.GeneratedAt = ""
	b.Meta.GeneratedAt = ""
	assert.Equal(t, a, b)
}

func TestDefaultRawValues(t *testing.T) {
	cases := map[string]string{
		"int":     "0",
		"bool":    "false",
		"string":  "",
		"bytes":   "0x",
		"byte":    "0x00",
		"bytes4":  "0x00000000",
		"pubkey":  "0x" + strings.Repeat("00", 32),
		"sig":     "0x" + strings.Repeat("00", 64),
		"datasig": "0x" + strings.Repeat("00", 64),
	}
	for typ, want := range cases {
		assert.Equal(t, want, DefaultRawValue(typ), "type %s", typ)
	}
}
