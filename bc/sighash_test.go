package bc

import (
	"bytes"
	"testing"
)

func testTx() *Transaction {
	var txid [32]byte
	for i := range txid {
		txid[i] = 0x09
	}
	spk := []byte{0x51}
	return &Transaction{
		Version: 1,
		Inputs: []*TxInput{
			{
				PreviousOutpoint: Outpoint{TxID: txid, Index: 0},
				SignatureScript:  []byte{0x01, 0x02},
				Sequence:         0,
				SigOpCount:       8,
				UTXOEntry:        &UTXOEntry{Amount: 5000, ScriptPublicKey: spk},
			},
			{
				PreviousOutpoint: Outpoint{TxID: txid, Index: 1},
				Sequence:         7,
				SigOpCount:       1,
				UTXOEntry:        &UTXOEntry{Amount: 100, ScriptPublicKey: spk},
			},
		},
		Outputs: []*TxOutput{{Value: 5000, ScriptPublicKey: spk}},
	}
}

func TestSigHashDeterministic(t *testing.T) {
	a := NewSigHasher(testTx()).SigHash(0, SigHashAll)
	b := NewSigHasher(testTx()).SigHash(0, SigHashAll)
	if a != b {
		t.Errorf("same transaction hashed differently: %x vs %x", a, b)
	}
	var zero [32]byte
	if a == zero {
		t.Error("digest is all zeros")
	}
}

func TestSigHashPerInput(t *testing.T) {
	h := NewSigHasher(testTx())
	if h.SigHash(0, SigHashAll) == h.SigHash(1, SigHashAll) {
		t.Error("different inputs produced the same digest")
	}
}

func TestSigHashIgnoresSignatureScript(t *testing.T) {
	before := testTx()
	after := testTx()
	after.Inputs[0].SignatureScript = bytes.Repeat([]byte{0xff}, 64)
	if NewSigHasher(before).SigHash(0, SigHashAll) != NewSigHasher(after).SigHash(0, SigHashAll) {
		t.Error("digest covers the signature script; pre-signing would be impossible")
	}
}

func TestSigHashCoversSpentOutput(t *testing.T) {
	base := NewSigHasher(testTx()).SigHash(0, SigHashAll)

	tx := testTx()
	tx.Inputs[0].UTXOEntry.Amount = 4999
	if NewSigHasher(tx).SigHash(0, SigHashAll) == base {
		t.Error("digest does not cover the spent amount")
	}

	tx = testTx()
	tx.Inputs[0].UTXOEntry.ScriptPublicKey = []byte{0x52}
	if NewSigHasher(tx).SigHash(0, SigHashAll) == base {
		t.Error("digest does not cover the spent script")
	}

	tx = testTx()
	tx.Outputs[0].Value = 1
	if NewSigHasher(tx).SigHash(0, SigHashAll) == base {
		t.Error("digest does not cover the outputs")
	}
}
