package vm

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"golang.org/x/crypto/blake2b"

	"github.com/Manyfestation/silverscript/bc"
)

func opSha256(e *Engine) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	h := sha256.Sum256(v)
	e.push(h[:])
	return nil
}

func opBlake2b(e *Engine) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	h := blake2b.Sum256(v)
	e.push(h[:])
	return nil
}

// verifySchnorr checks a 64-byte schnorr signature over digest with a
// 32-byte x-only public key. Malformed keys or signatures verify as
// false rather than aborting the program.
func verifySchnorr(sig64, pubkey []byte, digest [32]byte) bool {
	if len(sig64) != 64 || len(pubkey) != 32 {
		return false
	}
	pk, err := schnorr.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	s, err := schnorr.ParseSignature(sig64)
	if err != nil {
		return false
	}
	return s.Verify(digest[:], pk)
}

func opCheckSig(e *Engine) error {
	pubkey, err := e.pop()
	if err != nil {
		return err
	}
	sig, err := e.pop()
	if err != nil {
		return err
	}
	if len(sig) == 0 {
		e.pushBool(false)
		return nil
	}
	hashType := bc.SigHashAll
	if len(sig) == 65 {
		hashType = bc.SigHashType(sig[64])
		sig = sig[:64]
	}
	digest := e.sigHasher.SigHash(e.inputIndex, hashType)
	e.pushBool(verifySchnorr(sig, pubkey, digest))
	return nil
}

func opCheckDataSig(e *Engine) error {
	pubkey, err := e.pop()
	if err != nil {
		return err
	}
	msg, err := e.pop()
	if err != nil {
		return err
	}
	sig, err := e.pop()
	if err != nil {
		return err
	}
	if len(sig) == 0 {
		e.pushBool(false)
		return nil
	}
	// tolerate a trailing hash-type byte on signatures produced for
	// CHECKSIG so the same auto-signed value works for both checks
	if len(sig) == 65 {
		sig = sig[:64]
	}
	digest := sha256.Sum256(msg)
	e.pushBool(verifySchnorr(sig, pubkey, digest))
	return nil
}
