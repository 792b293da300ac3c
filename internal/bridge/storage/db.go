// Package storage persists bridge state in goleveldb with all-or-nothing write units.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

type (
	// Reader reads committed state. Get returns nil, nil for a missing key.
	Reader interface {
		Get(key []byte) ([]byte, error)
		Has(key []byte) (bool, error)
		Iterate(prefix []byte, fn func(key, value []byte) error) error
	}

	// ReadWriter stages writes that become visible to later reads of the same unit.
	ReadWriter interface {
		Reader
		Put(key, value []byte) error
		Delete(key []byte) error
	}
)

var defaultOptions = opt.Options{
	Compression:            opt.NoCompression,
	BlockCacheCapacity:     64 * opt.MiB,
	WriteBuffer:            32 * opt.MiB,
	DisableSeeksCompaction: true,
}

// DB is the bridge state database.
type DB struct {
	ldb    *leveldb.DB
	logger *zap.Logger
}

// Open opens or creates the database under dir, recovering the manifest when it is corrupted.
func Open(dir string, logger *zap.Logger) (*DB, error) {
	path := filepath.Join(dir, "state")
	ldb, err := leveldb.OpenFile(path, &defaultOptions)
	var corrupted *lerrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		logger.Warn("leveldb corruption detected, recovering", zap.String("path", path), zap.Error(err))
		ldb, err = leveldb.RecoverFile(path, &defaultOptions)
		if err == nil {
			logger.Warn("leveldb recovered", zap.String("path", path))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &DB{ldb: ldb, logger: logger}, nil
}

// OpenMemory returns a database backed by memory only.
func OpenMemory() (*DB, error) {
	ldb, err := leveldb.Open(lstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open memory leveldb: %w", err)
	}
	return &DB{ldb: ldb, logger: zap.NewNop()}, nil
}

func (db *DB) Close() error {
	return db.ldb.Close()
}

// Update runs fn inside one leveldb transaction. The transaction commits only when fn returns nil;
// any error discards every staged write.
func (db *DB) Update(fn func(ReadWriter) error) error {
	tr, err := db.ldb.OpenTransaction()
	if err != nil {
		return fmt.Errorf("open transaction: %w", err)
	}
	if err := fn(&txn{tr: tr}); err != nil {
		tr.Discard()
		return err
	}
	if err := tr.Commit(); err != nil {
		tr.Discard()
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View runs fn against a consistent snapshot.
func (db *DB) View(fn func(Reader) error) error {
	s, err := db.ldb.GetSnapshot()
	if err != nil {
		return fmt.Errorf("get snapshot: %w", err)
	}
	defer s.Release()
	return fn(&snapshot{s: s})
}

type txn struct {
	tr *leveldb.Transaction
}

func (t *txn) Get(key []byte) ([]byte, error) {
	v, err := t.tr.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (t *txn) Has(key []byte) (bool, error) { return t.tr.Has(key, nil) }

func (t *txn) Put(key, value []byte) error { return t.tr.Put(key, value, nil) }

func (t *txn) Delete(key []byte) error { return t.tr.Delete(key, nil) }

func (t *txn) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	it := t.tr.NewIterator(util.BytesPrefix(prefix), nil)
	return drain(it, fn)
}

type snapshot struct {
	s *leveldb.Snapshot
}

func (s *snapshot) Get(key []byte) ([]byte, error) {
	v, err := s.s.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (s *snapshot) Has(key []byte) (bool, error) { return s.s.Has(key, nil) }

func (s *snapshot) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	it := s.s.NewIterator(util.BytesPrefix(prefix), nil)
	return drain(it, fn)
}

type iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// drain walks it in key order. Key and value slices are only valid during the callback.
func drain(it iterator, fn func(key, value []byte) error) error {
	defer it.Release()
	for it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}
