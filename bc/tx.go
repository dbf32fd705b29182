// Package bc holds the minimal transaction context a compiled contract
// executes against: enough structure to spend one scripted output and
// to derive deterministic signature hashes for CHECKSIG and for the
// debugger's auto-signing convenience.
package bc

// Outpoint references the output being spent.
type Outpoint struct {
	TxID  [32]byte
	Index uint32
}

// UTXOEntry describes the output an input spends, as seen by the
// script engine.
type UTXOEntry struct {
	Amount          uint64
	ScriptPublicKey []byte
	BlockDAAScore   uint64
	IsCoinbase      bool
}

// TxInput spends one previous output. SignatureScript carries the
// unlocking input built for a compiled contract function.
type TxInput struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	Sequence         uint64
	SigOpCount       byte

	// UTXOEntry is the spent output. It must be populated before the
	// input can be executed or signed.
	UTXOEntry *UTXOEntry
}

type TxOutput struct {
	Value           uint64
	ScriptPublicKey []byte
}

type Transaction struct {
	Version  uint16
	Inputs   []*TxInput
	Outputs  []*TxOutput
	LockTime uint64
}
