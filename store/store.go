// Package store adapts the wallet engine's persistence requirements
// (spec §6: one logical table per entity kind, BeginTransaction/
// EndTransaction pairs with IMMEDIATE semantics) onto
// github.com/btcsuite/btcwallet/walletdb — the teacher's own
// dependency for exactly this purpose (declared in go.mod; walletdb
// backs dcrwallet's on-disk state the same way it's asked to back this
// module's).
//
// Each logical table from spec §6 becomes one top-level walletdb bucket.
// Batch wraps walletdb.Update (a single-writer read-write transaction,
// which is the closest walletdb analogue to "IMMEDIATE" semantics) so
// every caller gets commit-or-rollback-on-error for free, matching spec
// §5's "Database transactions for batch writes are scope-bound and roll
// back on any exception thrown inside the batch."
package store

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/decred/dcrd/chaincfg/chainhash"
)

var (
	txBucketKey         = []byte("transactions")
	coinbaseUTXOBucket  = []byte("coinbase-utxos")
	merkleBlockBucket   = []byte("merkle-blocks")
	peerBucket          = []byte("peers")
	didBucket           = []byte("dids")
	assetBucket         = []byte("assets")
)

// Store wraps a walletdb.DB and guarantees the top-level buckets spec §6
// requires exist before any Batch runs.
type Store struct {
	db walletdb.DB
}

// Open wraps an already-opened walletdb.DB and creates any of the six
// top-level buckets from spec §6 that don't yet exist.
func Open(db walletdb.DB) (*Store, error) {
	s := &Store{db: db}
	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		for _, key := range [][]byte{
			txBucketKey, coinbaseUTXOBucket, merkleBlockBucket,
			peerBucket, didBucket, assetBucket,
		} {
			if _, err := tx.CreateTopLevelBucket(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Batch runs fn inside a single walletdb.Update read-write transaction:
// committed if fn returns nil, rolled back otherwise (spec §6
// "BeginTransaction/EndTransaction... IMMEDIATE").
func (s *Store) Batch(fn func(tx walletdb.ReadWriteTx) error) error {
	return walletdb.Update(s.db, fn)
}

// View runs fn inside a read-only walletdb transaction.
func (s *Store) View(fn func(tx walletdb.ReadTx) error) error {
	return walletdb.View(s.db, fn)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// TransactionRecord is the row shape of the Transaction table (spec §6):
// chainID, blob, blockHeight, timestamp, isoPrefix, txHash.
type TransactionRecord struct {
	ChainID     string
	Blob        []byte
	BlockHeight uint32
	Timestamp   uint32
	ISOPrefix   string
	TxHash      [32]byte
}

// PutTransaction upserts rec, keyed by its txHash, inside tx.
func PutTransaction(tx walletdb.ReadWriteTx, rec TransactionRecord) error {
	b := tx.ReadWriteBucket(txBucketKey)
	return b.Put(rec.TxHash[:], encodeTransactionRecord(rec))
}

// GetTransaction looks up the Transaction row for hash, returning
// ok=false if no such row exists.
func GetTransaction(tx walletdb.ReadTx, hash [32]byte) (TransactionRecord, bool) {
	b := tx.ReadBucket(txBucketKey)
	raw := b.Get(hash[:])
	if raw == nil {
		return TransactionRecord{}, false
	}
	return decodeTransactionRecord(hash, raw), true
}

// DeleteTransaction removes the Transaction row for hash.
func DeleteTransaction(tx walletdb.ReadWriteTx, hash [32]byte) error {
	return tx.ReadWriteBucket(txBucketKey).Delete(hash[:])
}

// ForEachTransaction calls fn for every stored Transaction row, in
// bucket iteration order, stopping early if fn returns an error.
func ForEachTransaction(tx walletdb.ReadTx, fn func(TransactionRecord) error) error {
	b := tx.ReadBucket(txBucketKey)
	return b.ForEach(func(k, v []byte) error {
		var hash [32]byte
		copy(hash[:], k)
		return fn(decodeTransactionRecord(hash, v))
	})
}

func encodeTransactionRecord(rec TransactionRecord) []byte {
	isoPrefix := []byte(rec.ISOPrefix)
	chainID := []byte(rec.ChainID)

	out := make([]byte, 4+len(chainID)+4+4+2+len(isoPrefix)+4+len(rec.Blob))
	off := 0
	binary.LittleEndian.PutUint32(out[off:], uint32(len(chainID)))
	off += 4
	off += copy(out[off:], chainID)
	binary.LittleEndian.PutUint32(out[off:], rec.BlockHeight)
	off += 4
	binary.LittleEndian.PutUint32(out[off:], rec.Timestamp)
	off += 4
	binary.LittleEndian.PutUint16(out[off:], uint16(len(isoPrefix)))
	off += 2
	off += copy(out[off:], isoPrefix)
	binary.LittleEndian.PutUint32(out[off:], uint32(len(rec.Blob)))
	off += 4
	copy(out[off:], rec.Blob)
	return out
}

func decodeTransactionRecord(hash [32]byte, raw []byte) TransactionRecord {
	off := 0
	chainIDLen := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	chainID := string(raw[off : off+int(chainIDLen)])
	off += int(chainIDLen)
	blockHeight := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	timestamp := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	isoLen := binary.LittleEndian.Uint16(raw[off:])
	off += 2
	isoPrefix := string(raw[off : off+int(isoLen)])
	off += int(isoLen)
	blobLen := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	blob := append([]byte(nil), raw[off:off+int(blobLen)]...)

	return TransactionRecord{
		ChainID:     chainID,
		Blob:        blob,
		BlockHeight: blockHeight,
		Timestamp:   timestamp,
		ISOPrefix:   isoPrefix,
		TxHash:      hash,
	}
}

// CoinbaseUTXOKey packs (txHash, index) into the composite key the
// CoinbaseUTXO table is keyed by (spec §6).
func CoinbaseUTXOKey(txHash [32]byte, index uint16) []byte {
	key := make([]byte, 34)
	copy(key, txHash[:])
	binary.LittleEndian.PutUint16(key[32:], index)
	return key
}

// CoinbaseUTXORecord is the row shape of the CoinbaseUTXO table (spec
// §6).
type CoinbaseUTXORecord struct {
	TxHash      [32]byte
	BlockHeight uint32
	Timestamp   uint32
	Index       uint16
	ProgramHash [20]byte
	AssetID     [32]byte
	OutputLock  uint32
	Amount      string // decimal, since amounts may exceed 64 bits
	Payload     []byte
	Spent       bool
}

// PutCoinbaseUTXO upserts rec.
func PutCoinbaseUTXO(tx walletdb.ReadWriteTx, rec CoinbaseUTXORecord) error {
	b := tx.ReadWriteBucket(coinbaseUTXOBucket)
	return b.Put(CoinbaseUTXOKey(rec.TxHash, rec.Index), encodeCoinbaseUTXO(rec))
}

// SetCoinbaseUTXOSpent flips the persisted spent bit for the coinbase
// UTXO at (txHash, index) — the persistence step spec §9 Open Question
// (c) calls for: "SetSpent on coinbase UTXOs is currently set but never
// persisted... the spec assumes it should be persisted."
func SetCoinbaseUTXOSpent(tx walletdb.ReadWriteTx, txHash [32]byte, index uint16, spent bool) error {
	b := tx.ReadWriteBucket(coinbaseUTXOBucket)
	key := CoinbaseUTXOKey(txHash, index)
	raw := b.Get(key)
	if raw == nil {
		return nil
	}
	rec := decodeCoinbaseUTXO(raw)
	rec.Spent = spent
	return b.Put(key, encodeCoinbaseUTXO(rec))
}

// ForEachCoinbaseUTXO calls fn for every stored CoinbaseUTXO row.
func ForEachCoinbaseUTXO(tx walletdb.ReadTx, fn func(CoinbaseUTXORecord) error) error {
	b := tx.ReadBucket(coinbaseUTXOBucket)
	return b.ForEach(func(_, v []byte) error {
		return fn(decodeCoinbaseUTXO(v))
	})
}

func encodeCoinbaseUTXO(rec CoinbaseUTXORecord) []byte {
	amount := []byte(rec.Amount)
	payload := rec.Payload

	out := make([]byte, 32+4+4+2+20+32+4+4+len(amount)+4+len(payload)+1)
	off := 0
	off += copy(out[off:], rec.TxHash[:])
	binary.LittleEndian.PutUint32(out[off:], rec.BlockHeight)
	off += 4
	binary.LittleEndian.PutUint32(out[off:], rec.Timestamp)
	off += 4
	binary.LittleEndian.PutUint16(out[off:], rec.Index)
	off += 2
	off += copy(out[off:], rec.ProgramHash[:])
	off += copy(out[off:], rec.AssetID[:])
	binary.LittleEndian.PutUint32(out[off:], rec.OutputLock)
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(len(amount)))
	off += 4
	off += copy(out[off:], amount)
	binary.LittleEndian.PutUint32(out[off:], uint32(len(payload)))
	off += 4
	off += copy(out[off:], payload)
	if rec.Spent {
		out[off] = 1
	}
	return out
}

func decodeCoinbaseUTXO(raw []byte) CoinbaseUTXORecord {
	var rec CoinbaseUTXORecord
	off := 0
	copy(rec.TxHash[:], raw[off:off+32])
	off += 32
	rec.BlockHeight = binary.LittleEndian.Uint32(raw[off:])
	off += 4
	rec.Timestamp = binary.LittleEndian.Uint32(raw[off:])
	off += 4
	rec.Index = binary.LittleEndian.Uint16(raw[off:])
	off += 2
	copy(rec.ProgramHash[:], raw[off:off+20])
	off += 20
	copy(rec.AssetID[:], raw[off:off+32])
	off += 32
	rec.OutputLock = binary.LittleEndian.Uint32(raw[off:])
	off += 4
	amountLen := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	rec.Amount = string(raw[off : off+int(amountLen)])
	off += int(amountLen)
	payloadLen := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	rec.Payload = append([]byte(nil), raw[off:off+int(payloadLen)]...)
	off += int(payloadLen)
	rec.Spent = raw[off] == 1
	return rec
}

// MerkleBlockRecord is the row shape of the MerkleBlock table (spec §6):
// isoPrefix, height, blob.
type MerkleBlockRecord struct {
	ISOPrefix string
	Height    uint32
	Blob      []byte
}

// PutMerkleBlock upserts rec, keyed by (isoPrefix, height).
func PutMerkleBlock(tx walletdb.ReadWriteTx, rec MerkleBlockRecord) error {
	b := tx.ReadWriteBucket(merkleBlockBucket)
	return b.Put(merkleBlockKey(rec.ISOPrefix, rec.Height), rec.Blob)
}

// GetMerkleBlock looks up the merkle block at (isoPrefix, height).
func GetMerkleBlock(tx walletdb.ReadTx, isoPrefix string, height uint32) ([]byte, bool) {
	b := tx.ReadBucket(merkleBlockBucket)
	raw := b.Get(merkleBlockKey(isoPrefix, height))
	return raw, raw != nil
}

func merkleBlockKey(isoPrefix string, height uint32) []byte {
	key := make([]byte, len(isoPrefix)+4)
	copy(key, isoPrefix)
	binary.LittleEndian.PutUint32(key[len(isoPrefix):], height)
	return key
}

// MerkleBlockHash returns the double-SHA-256 identity of a stored header
// blob, returned as a chaincfg/chainhash.Hash (the teacher's own hash
// type) rather than a bare [32]byte so callers get its String()/IsEqual()
// behavior for free.
func MerkleBlockHash(rec MerkleBlockRecord) chainhash.Hash {
	first := sha256.Sum256(rec.Blob)
	return chainhash.Hash(sha256.Sum256(first[:]))
}

// PeerRecord is the row shape of the Peer table (spec §6): a 128-bit
// address (IPv6 or IPv4-mapped), port, and last-seen timestamp.
type PeerRecord struct {
	Address   [16]byte
	Port      uint16
	Timestamp uint64
}

// PutPeer upserts rec, keyed by (address, port).
func PutPeer(tx walletdb.ReadWriteTx, rec PeerRecord) error {
	b := tx.ReadWriteBucket(peerBucket)
	key := peerKey(rec.Address, rec.Port)
	val := make([]byte, 8)
	binary.LittleEndian.PutUint64(val, rec.Timestamp)
	return b.Put(key, val)
}

// DeletePeer removes the peer row for (address, port).
func DeletePeer(tx walletdb.ReadWriteTx, address [16]byte, port uint16) error {
	return tx.ReadWriteBucket(peerBucket).Delete(peerKey(address, port))
}

// ForEachPeer calls fn for every stored peer row.
func ForEachPeer(tx walletdb.ReadTx, fn func(PeerRecord) error) error {
	b := tx.ReadBucket(peerBucket)
	return b.ForEach(func(k, v []byte) error {
		var rec PeerRecord
		copy(rec.Address[:], k[:16])
		rec.Port = binary.BigEndian.Uint16(k[16:18])
		rec.Timestamp = binary.LittleEndian.Uint64(v)
		return fn(rec)
	})
}

func peerKey(address [16]byte, port uint16) []byte {
	key := make([]byte, 18)
	copy(key, address[:])
	binary.BigEndian.PutUint16(key[16:], port)
	return key
}

// DIDRecord is the row shape of the DID table (spec §6): didString,
// payloadBlob, height, timestamp, txHash, createTime.
type DIDRecord struct {
	DIDString   string
	PayloadBlob []byte
	Height      uint32
	Timestamp   uint32
	TxHash      [32]byte
	CreateTime  uint64
}

// PutDID upserts rec, keyed by its didString.
func PutDID(tx walletdb.ReadWriteTx, rec DIDRecord) error {
	b := tx.ReadWriteBucket(didBucket)

	out := make([]byte, 4+len(rec.PayloadBlob)+4+4+32+8)
	off := 0
	binary.LittleEndian.PutUint32(out[off:], uint32(len(rec.PayloadBlob)))
	off += 4
	off += copy(out[off:], rec.PayloadBlob)
	binary.LittleEndian.PutUint32(out[off:], rec.Height)
	off += 4
	binary.LittleEndian.PutUint32(out[off:], rec.Timestamp)
	off += 4
	off += copy(out[off:], rec.TxHash[:])
	binary.LittleEndian.PutUint64(out[off:], rec.CreateTime)

	return b.Put([]byte(rec.DIDString), out)
}

// GetDID looks up the DID row for didString.
func GetDID(tx walletdb.ReadTx, didString string) (DIDRecord, bool) {
	b := tx.ReadBucket(didBucket)
	raw := b.Get([]byte(didString))
	if raw == nil {
		return DIDRecord{}, false
	}

	rec := DIDRecord{DIDString: didString}
	off := 0
	payloadLen := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	rec.PayloadBlob = append([]byte(nil), raw[off:off+int(payloadLen)]...)
	off += int(payloadLen)
	rec.Height = binary.LittleEndian.Uint32(raw[off:])
	off += 4
	rec.Timestamp = binary.LittleEndian.Uint32(raw[off:])
	off += 4
	copy(rec.TxHash[:], raw[off:off+32])
	off += 32
	rec.CreateTime = binary.LittleEndian.Uint64(raw[off:])

	return rec, true
}

// AssetRecord is the row shape of the Asset table (spec §6): assetID,
// blob, amount.
type AssetRecord struct {
	AssetID [32]byte
	Blob    []byte
	Amount  string
}

// PutAsset upserts rec, keyed by its assetID.
func PutAsset(tx walletdb.ReadWriteTx, rec AssetRecord) error {
	b := tx.ReadWriteBucket(assetBucket)

	out := make([]byte, 4+len(rec.Blob)+4+len(rec.Amount))
	off := 0
	binary.LittleEndian.PutUint32(out[off:], uint32(len(rec.Blob)))
	off += 4
	off += copy(out[off:], rec.Blob)
	amount := []byte(rec.Amount)
	binary.LittleEndian.PutUint32(out[off:], uint32(len(amount)))
	off += 4
	copy(out[off:], amount)

	return b.Put(rec.AssetID[:], out)
}

// ForEachAsset calls fn for every stored Asset row.
func ForEachAsset(tx walletdb.ReadTx, fn func(AssetRecord) error) error {
	b := tx.ReadBucket(assetBucket)
	return b.ForEach(func(k, v []byte) error {
		var rec AssetRecord
		copy(rec.AssetID[:], k)
		off := 0
		blobLen := binary.LittleEndian.Uint32(v[off:])
		off += 4
		rec.Blob = append([]byte(nil), v[off:off+int(blobLen)]...)
		off += int(blobLen)
		amountLen := binary.LittleEndian.Uint32(v[off:])
		off += 4
		rec.Amount = string(v[off : off+int(amountLen)])
		return fn(rec)
	})
}
