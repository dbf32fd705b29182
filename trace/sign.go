package trace

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"

	"github.com/Manyfestation/silverscript/bc"
	"github.com/Manyfestation/silverscript/compiler"
)

// DummyTx builds the canonical transaction a trace executes against:
// one input spending a fixed outpoint locked by the compiled program.
// Everything is deterministic so repeated traces are byte-identical.
func DummyTx(program []byte) *bc.Transaction {
	var txid [32]byte
	for i := range txid {
		txid[i] = 0x09
	}
	return &bc.Transaction{
		Version: 1,
		Inputs: []*bc.TxInput{{
			PreviousOutpoint: bc.Outpoint{TxID: txid, Index: 0},
			Sequence:         0,
			SigOpCount:       8,
			UTXOEntry: &bc.UTXOEntry{
				Amount:          5000,
				ScriptPublicKey: program,
			},
		}},
		Outputs: []*bc.TxOutput{{
			Value:           5000,
			ScriptPublicKey: program,
		}},
	}
}

// AutoSignArgs replaces signature-typed argument values that decode to
// exactly 32 bytes, treating them as private keys: the value becomes a
// schnorr signature over the trace transaction's digest plus a
// trailing hash-type byte. Values of any other length pass through
// unmodified, so externally produced signatures still work. A 32-byte
// value that does not form a usable key (all zeros, say) also passes
// through rather than failing the trace.
func AutoSignArgs(params []compiler.ABIParam, args []string, tx *bc.Transaction) ([]string, error) {
	out := make([]string, len(args))
	copy(out, args)
	for i, p := range params {
		if p.Type != "sig" && p.Type != "datasig" {
			continue
		}
		data, err := compiler.EncodeValue(p.Type, args[i])
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", p.Name)
		}
		if len(data) != 32 {
			continue
		}
		priv, _ := btcec.PrivKeyFromBytes(data)
		if priv.Key.IsZero() {
			continue
		}
		digest := bc.NewSigHasher(tx).SigHash(0, bc.SigHashAll)
		sig, err := schnorr.Sign(priv, digest[:])
		if err != nil {
			continue
		}
		signed := append(sig.Serialize(), byte(bc.SigHashAll))
		out[i] = "0x" + hex.EncodeToString(signed)
	}
	return out, nil
}
