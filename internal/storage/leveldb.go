package storage

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vantachain/vanta/core"
)

// LevelDBStore is the on-disk Store backing a running node (spec §6:
// "data/blockchain_db/"), grounded on the teacher's CurrentStore()
// key/value convention in core/storage.go but backed directly by
// goleveldb rather than an HTTP gateway, since this spec has no IPFS
// component.
type LevelDBStore struct {
	db     *leveldb.DB
	logger *logrus.Logger
}

// OpenLevelDBStore opens (creating if absent) a LevelDB database at dir.
func OpenLevelDBStore(dir string, logger *logrus.Logger) (*LevelDBStore, error) {
	if logger == nil {
		logger = logrus.New()
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, core.WrapError(core.KindStorageError, err, "open leveldb at %s", dir)
	}
	logger.WithField("dir", dir).Info("storage: opened leveldb store")
	return &LevelDBStore{db: db, logger: logger}, nil
}

func (s *LevelDBStore) SaveBlockchain(blocks []core.Block) error {
	data, err := encodeBlocks(blocks)
	if err != nil {
		return core.WrapError(core.KindStorageError, err, "encode blockchain")
	}
	if err := s.db.Put([]byte(blockchainKey), data, nil); err != nil {
		return core.WrapError(core.KindStorageError, err, "persist blockchain")
	}
	s.logger.WithField("blocks", len(blocks)).Debug("storage: saved blockchain")
	return nil
}

func (s *LevelDBStore) LoadBlockchain() ([]core.Block, error) {
	data, err := s.db.Get([]byte(blockchainKey), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, core.NewError(core.KindNotFound, "no persisted blockchain found")
		}
		return nil, core.WrapError(core.KindStorageError, err, "read blockchain")
	}
	blocks, err := decodeBlocks(data)
	if err != nil {
		return nil, core.WrapError(core.KindStorageError, err, "decode blockchain")
	}
	return blocks, nil
}

func (s *LevelDBStore) SaveWallet(id string, record []byte) error {
	if err := s.db.Put([]byte(walletKey(id)), record, nil); err != nil {
		return core.WrapError(core.KindStorageError, err, "persist wallet %s", id)
	}
	return nil
}

func (s *LevelDBStore) LoadWallet(id string) ([]byte, error) {
	data, err := s.db.Get([]byte(walletKey(id)), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, core.NewError(core.KindNotFound, "wallet %s not found", id)
		}
		return nil, core.WrapError(core.KindStorageError, err, "read wallet %s", id)
	}
	return data, nil
}

func (s *LevelDBStore) ListWallets() ([]string, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(walletKeyPrefix)), nil)
	defer iter.Release()
	var ids []string
	for iter.Next() {
		key := string(iter.Key())
		ids = append(ids, strings.TrimPrefix(key, walletKeyPrefix))
	}
	if err := iter.Error(); err != nil {
		return nil, core.WrapError(core.KindStorageError, err, "list wallets")
	}
	return ids, nil
}

func (s *LevelDBStore) Close() error {
	if err := s.db.Close(); err != nil {
		return core.WrapError(core.KindStorageError, err, "close leveldb store")
	}
	return nil
}
