package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	bolt "go.etcd.io/bbolt"

	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/mmr"
)

var digestsBucket = []byte("mmr_digests")
var lengthKey = []byte("length")
var metaBucket = []byte("client_meta")
var clientKey = []byte("client")
var baseHeightKey = []byte("base_height")

// BoltStore is a persistent mmr.Store backed by a single bbolt bucket,
// keyed by big-endian position. It plays the role the teacher's
// file-backed BlockCache plays for compact blocks: an append-mostly,
// truncatable log, but using bbolt's transactional pages instead of a
// hand-rolled offset index.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if necessary) a bbolt database at path and
// ensures the digests bucket exists.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: opening bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(digestsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func posKey(pos uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, pos)
	return buf
}

func encodeDigest(d mmr.Digest) []byte {
	buf := make([]byte, 0, 8+8+32+32)
	var tmp [8]byte

	binary.BigEndian.PutUint64(tmp[:], d.MinHeight)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], d.MaxHeight)
	buf = append(buf, tmp[:]...)

	work := d.PartialChainWork
	if work == nil {
		work = new(uint256.Int)
	}
	workBytes := work.Bytes32()
	buf = append(buf, workBytes[:]...)

	buf = append(buf, d.ChildrenHash[:]...)
	return buf
}

func decodeDigest(raw []byte) (mmr.Digest, error) {
	if len(raw) != 8+8+32+32 {
		return mmr.Digest{}, errors.New("store: corrupt digest record")
	}
	minHeight := binary.BigEndian.Uint64(raw[0:8])
	maxHeight := binary.BigEndian.Uint64(raw[8:16])
	work := new(uint256.Int).SetBytes(raw[16:48])
	var childrenHash hash32.T
	copy(childrenHash[:], raw[48:80])
	return mmr.Digest{
		MinHeight:        minHeight,
		MaxHeight:        maxHeight,
		PartialChainWork: work,
		ChildrenHash:     childrenHash,
	}, nil
}

// Get implements mmr.Store.
func (s *BoltStore) Get(pos uint64) (mmr.Digest, error) {
	var d mmr.Digest
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(digestsBucket)
		raw := b.Get(posKey(pos))
		if raw == nil {
			return ErrOutOfRange
		}
		var err error
		d, err = decodeDigest(raw)
		return err
	})
	return d, err
}

func readLength(b *bolt.Bucket) uint64 {
	raw := b.Get(lengthKey)
	if raw == nil {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

func writeLength(b *bolt.Bucket, n uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return b.Put(lengthKey, buf)
}

// Append implements mmr.Store. The current length is tracked under a
// dedicated meta key rather than derived from Bucket.Stats(), which walks
// the whole bucket and would make every append pay an O(n) cost.
func (s *BoltStore) Append(d mmr.Digest) (uint64, error) {
	var pos uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(digestsBucket)
		pos = readLength(b)
		if err := b.Put(posKey(pos), encodeDigest(d)); err != nil {
			return err
		}
		return writeLength(b, pos+1)
	})
	return pos, err
}

// Len implements mmr.Store.
func (s *BoltStore) Len() uint64 {
	var n uint64
	s.db.View(func(tx *bolt.Tx) error {
		n = readLength(tx.Bucket(digestsBucket))
		return nil
	})
	return n
}

// SaveClientMeta persists the wire-encoded client state and its base height
// so a restarted process can resume without replaying the whole header
// history, the bbolt analogue of the teacher's BlockCache.Sync writing its
// length file to disk.
func (s *BoltStore) SaveClientMeta(packedClient []byte, baseHeight uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(metaBucket)
		if err := b.Put(clientKey, packedClient); err != nil {
			return err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, baseHeight)
		return b.Put(baseHeightKey, buf)
	})
}

// LoadClientMeta reads back the persisted client state. ok is false if no
// client has ever been saved (a freshly-created, empty store).
func (s *BoltStore) LoadClientMeta() (packedClient []byte, baseHeight uint64, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(metaBucket)
		raw := b.Get(clientKey)
		if raw == nil {
			return nil
		}
		packedClient = append([]byte(nil), raw...)
		heightRaw := b.Get(baseHeightKey)
		baseHeight = binary.BigEndian.Uint64(heightRaw)
		ok = true
		return nil
	})
	return packedClient, baseHeight, ok, err
}

// Truncate drops every entry at or above pos, used by prover.Service's
// RollbackTo when a reorg invalidates the tail of the stored tree.
func (s *BoltStore) Truncate(pos uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(digestsBucket)
		c := b.Cursor()
		for k, _ := c.Seek(posKey(pos)); k != nil && len(k) == 8; k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return writeLength(b, pos)
	})
}
