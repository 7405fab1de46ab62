// Package storage persists ledger snapshots and wallet records to disk.
package storage

import (
	"encoding/json"

	"github.com/vantachain/vanta/core"
)

// Store is the persistence boundary between the ledger engine and disk
// (spec §6): serialized chain/wallet state goes through these six
// operations, nothing else touches the filesystem directly.
type Store interface {
	SaveBlockchain(blocks []core.Block) error
	LoadBlockchain() ([]core.Block, error)
	SaveWallet(id string, record []byte) error
	LoadWallet(id string) ([]byte, error)
	ListWallets() ([]string, error)
	Close() error
}

// blockchainKey is the fixed LevelDB key the whole chain is stored under;
// spec §6 treats the chain as a single serialized blob rather than
// per-block records.
const blockchainKey = "chain:blocks"

const walletKeyPrefix = "wallet:"

func walletKey(id string) string { return walletKeyPrefix + id }

func encodeBlocks(blocks []core.Block) ([]byte, error) {
	return json.Marshal(blocks)
}

func decodeBlocks(data []byte) ([]core.Block, error) {
	var blocks []core.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}
