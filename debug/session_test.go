package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manyfestation/silverscript/ast"
	"github.com/Manyfestation/silverscript/bc"
	"github.com/Manyfestation/silverscript/compiler"
	"github.com/Manyfestation/silverscript/vm"
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

func sessionFor(t *testing.T, src string, ctorArgs []string, fn string, args []string, opts Options) (*Session, *compiler.CompiledContract) {
	t.Helper()
	contract, err := ast.ParseContract(src)
	require.NoError(t, err)
	compiled, err := compiler.Compile(contract, ctorArgs)
	require.NoError(t, err)
	sigScript, err := compiled.BuildSigScript(fn, args)
	require.NoError(t, err)
	tx := &bc.Transaction{
		Version: 1,
		Inputs: []*bc.TxInput{{
			SignatureScript: sigScript,
			UTXOEntry:       &bc.UTXOEntry{Amount: 5000, ScriptPublicKey: compiled.Program},
		}},
	}
	engine, err := vm.NewEngine(tx, 0)
	require.NoError(t, err)
	return NewSession(engine, compiled, src, opts), compiled
}

func TestStepOpcodeWholeProgram(t *testing.T) {
	s, compiled := sessionFor(t, poc, []string{"10"}, "main", []string{"1", "2"}, Options{})

	progInsts, err := vm.ParseProgram(compiled.Program)
	require.NoError(t, err)

	var steps int
	for {
		info, err := s.StepOpcode()
		require.NoError(t, err)
		if info == nil {
			break
		}
		steps++
	}
	assert.Equal(t, len(progInsts), steps)
	assert.Equal(t, Completed, s.State())
	assert.False(t, s.IsExecuting())
	assert.Equal(t, steps, s.PC())

	// terminal sessions no-op
	info, err := s.StepOpcode()
	assert.Nil(t, info)
	assert.NoError(t, err)
}

func TestRunToFirstStatement(t *testing.T) {
	s, _ := sessionFor(t, poc, []string{"10"}, "main", []string{"1", "2"}, Options{})

	assert.Nil(t, s.Variables(), "no scope before the first mapped instruction")

	require.NoError(t, s.RunToFirstStatement())
	m := s.CurrentMapping()
	require.NotNil(t, m)
	assert.True(t, m.StatementBoundary)
	assert.Equal(t, uint32(0), m.FrameID)
	assert.Equal(t, uint32(0), m.CallDepth)

	vars := map[string]string{}
	for _, v := range s.Variables() {
		vars[v.Name] = v.Value
	}
	assert.Equal(t, "1", vars["a"])
	assert.Equal(t, "2", vars["b"])
	assert.Equal(t, "10", vars["limit"])
	_, declared := vars["sum"]
	assert.False(t, declared, "sum is not visible before its declaration completes")
}

func TestStepInto(t *testing.T) {
	s, _ := sessionFor(t, poc, []string{"10"}, "main", []string{"1", "2"}, Options{})
	require.NoError(t, s.RunToFirstStatement())

	type stop struct {
		depth uint32
		calls []string
	}
	var stops []stop
	var lastSeq uint32
	for {
		info, err := s.StepInto()
		require.NoError(t, err)
		if info == nil {
			break
		}
		m := s.CurrentMapping()
		require.NotNil(t, m)
		require.GreaterOrEqual(t, m.Sequence, lastSeq)
		lastSeq = m.Sequence
		stops = append(stops, stop{m.CallDepth, s.CallStack()})
	}
	assert.Equal(t, Completed, s.State())

	// statements after the first: require, the bump call, and the
	// require inside the inlined bump
	require.Len(t, stops, 3)
	assert.Equal(t, uint32(0), stops[0].depth)
	assert.Equal(t, []string{"main"}, stops[0].calls)
	assert.Equal(t, uint32(0), stops[1].depth)
	assert.Equal(t, uint32(1), stops[2].depth)
	assert.Equal(t, []string{"main", "bump"}, stops[2].calls)
}

func TestVariablesAfterDeclaration(t *testing.T) {
	s, _ := sessionFor(t, poc, []string{"10"}, "main", []string{"1", "2"}, Options{})
	require.NoError(t, s.RunToFirstStatement())

	info, err := s.StepInto()
	require.NoError(t, err)
	require.NotNil(t, info)

	found := false
	for _, v := range s.Variables() {
		if v.Name == "sum" {
			found = true
			assert.Equal(t, "3", v.Value)
			assert.Equal(t, compiler.OriginLocal, v.Origin)
		}
	}
	assert.True(t, found, "sum should be visible at the second statement")
}

func TestFailedSession(t *testing.T) {
	s, _ := sessionFor(t, poc, []string{"10"}, "main", []string{"7", "8"}, Options{})

	var stepErr error
	for {
		info, err := s.StepOpcode()
		if err != nil {
			stepErr = err
			break
		}
		if info == nil {
			break
		}
	}
	require.Equal(t, vm.ErrVerifyFailed, stepErr)
	assert.Equal(t, Failed, s.State())
	assert.False(t, s.IsExecuting())

	last, ok := s.LastOpcode()
	require.True(t, ok)
	assert.Equal(t, vm.OP_VERIFY, last.Op)

	// still failed, same error
	_, err := s.StepOpcode()
	assert.Equal(t, vm.ErrVerifyFailed, err)
}

func TestStepLimit(t *testing.T) {
	s, _ := sessionFor(t, poc, []string{"10"}, "main", []string{"1", "2"}, Options{MaxSteps: 3})
	for i := 0; i < 3; i++ {
		_, err := s.StepOpcode()
		require.NoError(t, err)
	}
	_, err := s.StepOpcode()
	assert.Equal(t, ErrStepLimit, err)
	assert.Equal(t, Failed, s.State())
}

func TestStacksSnapshot(t *testing.T) {
	s, _ := sessionFor(t, poc, []string{"10"}, "main", []string{"1", "2"}, Options{})

	// the push-only unlocking input is applied at construction
	data, alt := s.StacksSnapshot()
	require.Len(t, data, 2)
	assert.Empty(t, alt)
	assert.Equal(t, vm.Int64Bytes(1), data[0])
	assert.Equal(t, vm.Int64Bytes(2), data[1])
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		typ  string
		raw  []byte
		want string
	}{
		{"int", vm.Int64Bytes(42), "42"},
		{"int", vm.Int64Bytes(-1), "-1"},
		{"int", []byte{}, "0"},
		{"int", []byte{0x05, 0x00}, "0x0500"}, // malformed falls back to hex
		{"bool", vm.BoolBytes(true), "true"},
		{"bool", []byte{}, "false"},
		{"string", []byte("hi"), `"hi"`},
		{"bytes", []byte{0xde, 0xad}, "0xdead"},
		{"pubkey", []byte{0x01, 0x02}, "0x0102"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatValue(c.typ, c.raw), "type %s raw %x", c.typ, c.raw)
	}
}

func TestOpcodeMetas(t *testing.T) {
	prog, err := vm.Assemble("1 2 ADD 0xdead EQUAL")
	require.NoError(t, err)
	metas, err := OpcodeMetas(prog)
	require.NoError(t, err)
	require.Len(t, metas, 5)
	assert.Equal(t, "1", metas[0].Name)
	assert.Equal(t, "ADD", metas[2].Name)
	assert.Equal(t, "dead", metas[3].Data)
	assert.Equal(t, "EQUAL", metas[4].Name)
	assert.Equal(t, uint32(3), metas[3].Offset)
}
