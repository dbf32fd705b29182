package vm

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/Manyfestation/silverscript/bc"
)

func testTx(sigScript, scriptPubKey []byte) *bc.Transaction {
	return &bc.Transaction{
		Version: 1,
		Inputs: []*bc.TxInput{{
			PreviousOutpoint: bc.Outpoint{TxID: [32]byte{0x01}, Index: 0},
			SignatureScript:  sigScript,
			Sequence:         0,
			SigOpCount:       1,
			UTXOEntry: &bc.UTXOEntry{
				Amount:          5000,
				ScriptPublicKey: scriptPubKey,
			},
		}},
	}
}

func run(t *testing.T, sigSrc, progSrc string) error {
	t.Helper()
	sig, err := Assemble(sigSrc)
	if err != nil {
		t.Fatalf("assembling %q: %v", sigSrc, err)
	}
	prog, err := Assemble(progSrc)
	if err != nil {
		t.Fatalf("assembling %q: %v", progSrc, err)
	}
	e, err := NewEngine(testTx(sig, prog), 0)
	if err != nil {
		return err
	}
	return e.Run()
}

func TestRunPrograms(t *testing.T) {
	cases := []struct {
		sig, prog string
		wantErr   error
	}{
		{"", "1 2 ADD 3 NUMEQUAL", nil},
		{"", "2 3 MUL 6 NUMEQUAL", nil},
		{"", "7 2 DIV 3 NUMEQUAL", nil},
		{"", "-7 2 MOD 1 NUMEQUAL", nil},
		{"", "7 NEGATE -7 NUMEQUAL", nil},
		{"", "-7 ABS 7 NUMEQUAL", nil},
		{"", "1 2 LESSTHAN", nil},
		{"", "2 1 LESSTHAN", ErrFalseVMResult},
		{"", "2 2 LESSTHANOREQUAL", nil},
		{"", "3 2 GREATERTHAN", nil},
		{"", "2 5 MIN 2 NUMEQUAL", nil},
		{"", "2 5 MAX 5 NUMEQUAL", nil},
		{"", "3 1 5 WITHIN", nil},
		{"", "5 1 5 WITHIN", ErrFalseVMResult},
		{"", "1 0 BOOLAND", ErrFalseVMResult},
		{"", "1 0 BOOLOR", nil},
		{"", "0 NOT", nil},
		{"", "1 0 DIV", ErrDivZero},
		{"", "1 0 MOD", ErrDivZero},
		{"", "'foo' 'bar' CAT 'foobar' EQUAL", nil},
		{"", "'hello' SIZE 5 NUMEQUAL NIP", nil},
		{"", "5 DUP NUMEQUAL", nil},
		{"", "1 2 SWAP DROP 2 NUMEQUAL", nil},
		{"", "1 TOALTSTACK 2 DROP FROMALTSTACK", nil},
		{"", "1 IF 5 ELSE 7 ENDIF 5 NUMEQUAL", nil},
		{"", "0 IF 5 ELSE 7 ENDIF 7 NUMEQUAL", nil},
		{"", "0 NOTIF 5 ENDIF 5 NUMEQUAL", nil},
		{"", "1 IF 5", ErrNonEmptyCondStack},
		{"", "1 ENDIF", ErrCondStack},
		{"", "5 VERIFY 1", nil},
		{"", "0 VERIFY 1", ErrVerifyFailed},
		{"", "FAIL", ErrReturn},
		{"", "", ErrFalseVMResult},
		{"", "ADD", ErrDataStackUnderflow},
		{"", "FROMALTSTACK", ErrAltStackUnderflow},
		{"5", "5 NUMEQUAL", nil},
		{"5 7", "ADD 12 NUMEQUAL", nil},
		{"1 1 ADD", "1", ErrNotPushOnly},
	}
	for _, c := range cases {
		err := run(t, c.sig, c.prog)
		if err != c.wantErr {
			t.Errorf("sig %q prog %q: got err %v, want %v", c.sig, c.prog, err, c.wantErr)
		}
	}
}

func TestStepVisitsSkippedBranches(t *testing.T) {
	prog, err := Assemble("0 IF 5 ELSE 7 ENDIF 7 NUMEQUAL")
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(testTx(nil, prog), 0)
	if err != nil {
		t.Fatal(err)
	}
	var infos []StepInfo
	for {
		more, err := e.Step()
		if err != nil {
			t.Fatal(err)
		}
		if !more {
			break
		}
		last, ok := e.Last()
		if !ok {
			t.Fatal("Step reported progress but Last is empty")
		}
		infos = append(infos, last)
	}
	insts, _ := ParseProgram(prog)
	if len(infos) != len(insts) {
		t.Fatalf("visited %d instructions, want %d", len(infos), len(insts))
	}
	wantExecuted := []bool{true, true, false, false, true, true, true, true}
	for i, info := range infos {
		if info.Executed != wantExecuted[i] {
			t.Errorf("step %d (%s): executed %v, want %v", i, info.Op, info.Executed, wantExecuted[i])
		}
	}
	if !e.Done() {
		t.Error("engine not done after final step")
	}
}

func TestRunLimit(t *testing.T) {
	prog, err := Assemble("1 2 ADD 3 NUMEQUAL")
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(testTx(nil, prog), 0)
	if err != nil {
		t.Fatal(err)
	}
	e.runLimit = 2
	if err := e.Run(); err != ErrRunLimitExceeded {
		t.Errorf("got %v, want ErrRunLimitExceeded", err)
	}
}

func TestCheckSig(t *testing.T) {
	priv, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x01}, 32))
	pub := schnorr.SerializePubKey(priv.PubKey())

	prog := append(PushdataBytes(pub), byte(OP_CHECKSIG))
	tx := testTx(nil, prog)

	digest := bc.NewSigHasher(tx).SigHash(0, bc.SigHashAll)
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		t.Fatal(err)
	}
	sigBytes := append(sig.Serialize(), byte(bc.SigHashAll))
	tx.Inputs[0].SignatureScript = PushdataBytes(sigBytes)

	e, err := NewEngine(tx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}

	// corrupt the signature
	bad := append([]byte{}, sigBytes...)
	bad[10] ^= 0xff
	tx.Inputs[0].SignatureScript = PushdataBytes(bad)
	e, err = NewEngine(tx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); err != ErrFalseVMResult {
		t.Errorf("corrupt signature: got %v, want ErrFalseVMResult", err)
	}
}

func TestCheckDataSig(t *testing.T) {
	priv, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x02}, 32))
	pub := schnorr.SerializePubKey(priv.PubKey())

	msg := []byte("hello")
	digest := sha256.Sum256(msg)
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		t.Fatal(err)
	}

	var prog []byte
	prog = append(prog, PushdataBytes(sig.Serialize())...)
	prog = append(prog, PushdataBytes(msg)...)
	prog = append(prog, PushdataBytes(pub)...)
	prog = append(prog, byte(OP_CHECKDATASIG))

	e, err := NewEngine(testTx(nil, prog), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); err != nil {
		t.Errorf("valid data signature rejected: %v", err)
	}
}

func TestAssembleDisassemble(t *testing.T) {
	cases := []string{
		"1 2 ADD 3 NUMEQUAL",
		"DUP 0 NUMEQUAL IF DROP 1 ELSE FAIL ENDIF",
		"0xdeadbeef SHA256 0xdeadbeef BLAKE2B EQUAL",
		"16 17 ADD", // 17 needs a data push
	}
	for _, src := range cases {
		prog, err := Assemble(src)
		if err != nil {
			t.Errorf("assembling %q: %v", src, err)
			continue
		}
		dis, err := Disassemble(prog)
		if err != nil {
			t.Errorf("disassembling %q: %v", src, err)
			continue
		}
		prog2, err := Assemble(dis)
		if err != nil {
			t.Errorf("reassembling %q: %v", dis, err)
			continue
		}
		if !bytes.Equal(prog, prog2) {
			t.Errorf("%q: round trip %x != %x", src, prog, prog2)
		}
	}
}

func TestInt64Bytes(t *testing.T) {
	cases := []struct {
		n   int64
		enc []byte
	}{
		{0, []byte{}},
		{1, []byte{0x01}},
		{-1, []byte{0x81}},
		{127, []byte{0x7f}},
		{-127, []byte{0xff}},
		{128, []byte{0x80, 0x00}},
		{-128, []byte{0x80, 0x80}},
		{256, []byte{0x00, 0x01}},
		{-256, []byte{0x00, 0x81}},
	}
	for _, c := range cases {
		got := Int64Bytes(c.n)
		if !bytes.Equal(got, c.enc) {
			t.Errorf("Int64Bytes(%d) = %x, want %x", c.n, got, c.enc)
		}
		back, err := AsInt64(c.enc)
		if err != nil || back != c.n {
			t.Errorf("AsInt64(%x) = %d, %v, want %d", c.enc, back, err, c.n)
		}
	}

	// padded, padded negative, and too wide
	for _, bad := range [][]byte{
		{0x05, 0x00},
		{0x00, 0x00, 0x80},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09},
	} {
		if _, err := AsInt64(bad); err != ErrBadValue {
			t.Errorf("AsInt64(%x): got %v, want ErrBadValue", bad, err)
		}
	}
}
