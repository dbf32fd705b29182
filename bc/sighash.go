package bc

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// SigHashType selects which transaction parts a signature commits to.
// Only SigHashAll is produced by the toolchain today; the byte is kept
// on the wire so signatures stay self-describing.
type SigHashType byte

const SigHashAll SigHashType = 0x01

// signingHashKey domain-separates transaction signature hashes from
// any other blake2b use.
const signingHashKey = "SilverTransactionSigningHash"

// SigHasher computes signature hashes for one transaction, caching the
// sub-hashes that do not depend on the input index.
type SigHasher struct {
	tx *Transaction

	prevoutsHash  [32]byte
	sequencesHash [32]byte
	outputsHash   [32]byte
	cached        bool
}

func NewSigHasher(tx *Transaction) *SigHasher {
	return &SigHasher{tx: tx}
}

func newKeyedHash() hash.Hash {
	h, err := blake2b.New256([]byte(signingHashKey))
	if err != nil {
		// blake2b only rejects keys longer than 64 bytes.
		panic(err)
	}
	return h
}

func writeUint16(h hash.Hash, n uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], n)
	h.Write(b[:])
}

func writeUint32(h hash.Hash, n uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	h.Write(b[:])
}

func writeUint64(h hash.Hash, n uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	h.Write(b[:])
}

func writeVarBytes(h hash.Hash, b []byte) {
	writeUint64(h, uint64(len(b)))
	h.Write(b)
}

func (s *SigHasher) ensureCache() {
	if s.cached {
		return
	}
	h := newKeyedHash()
	for _, in := range s.tx.Inputs {
		h.Write(in.PreviousOutpoint.TxID[:])
		writeUint32(h, in.PreviousOutpoint.Index)
	}
	h.Sum(s.prevoutsHash[:0])

	h = newKeyedHash()
	for _, in := range s.tx.Inputs {
		writeUint64(h, in.Sequence)
	}
	h.Sum(s.sequencesHash[:0])

	h = newKeyedHash()
	for _, out := range s.tx.Outputs {
		writeUint64(h, out.Value)
		writeVarBytes(h, out.ScriptPublicKey)
	}
	h.Sum(s.outputsHash[:0])

	s.cached = true
}

// SigHash returns the digest a schnorr signature for the given input
// commits to. The signature script itself is not covered, so inputs
// can be signed before their unlocking input is assembled.
func (s *SigHasher) SigHash(inputIndex int, hashType SigHashType) [32]byte {
	s.ensureCache()

	in := s.tx.Inputs[inputIndex]
	h := newKeyedHash()
	writeUint16(h, s.tx.Version)
	h.Write(s.prevoutsHash[:])
	h.Write(s.sequencesHash[:])
	h.Write(in.PreviousOutpoint.TxID[:])
	writeUint32(h, in.PreviousOutpoint.Index)
	writeVarBytes(h, in.UTXOEntry.ScriptPublicKey)
	writeUint64(h, in.UTXOEntry.Amount)
	writeUint64(h, in.Sequence)
	h.Write([]byte{in.SigOpCount})
	h.Write(s.outputsHash[:])
	writeUint64(h, s.tx.LockTime)
	h.Write([]byte{byte(hashType)})

	var digest [32]byte
	h.Sum(digest[:0])
	return digest
}
