package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gmsas95/finbot/internal/config"
	apperrors "github.com/gmsas95/finbot/internal/errors"
)

// Store provides unified access to SQLite and BadgerDB
type Store struct {
	db     *gorm.DB
	badger *badger.DB
	config *config.StorageConfig
}

// New creates a new Store instance
func New(cfg *config.Config) (*Store, error) {
	sqlitePath := cfg.Storage.SQLitePath
	if sqlitePath == "" {
		sqlitePath = filepath.Join(cfg.Storage.DataDir, "finbot.db")
	}

	db, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}

	badgerPath := cfg.Storage.BadgerPath
	if badgerPath == "" {
		badgerPath = filepath.Join(cfg.Storage.DataDir, "badger")
	}

	badgerDB, err := OpenBadger(badgerPath)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		badger: badgerDB,
		config: &cfg.Storage,
	}, nil
}

// NewFromHandles wraps already opened databases; used by tests.
func NewFromHandles(db *gorm.DB, bdb *badger.DB) *Store {
	return &Store{db: db, badger: bdb}
}

// OpenSQLite opens the ledger database with the pure Go driver
func OpenSQLite(path string) (*gorm.DB, error) {
	sqliteDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return db, nil
}

// OpenBadger opens the session/kv database
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return bdb, nil
}

// Close closes all database connections
func (s *Store) Close() error {
	var errs []error
	if s.badger != nil {
		errs = append(errs, s.badger.Close())
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// DB returns the GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Badger returns the BadgerDB instance
func (s *Store) Badger() *badger.DB {
	return s.badger
}

// Ping checks both databases are reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite unreachable: %w", err)
	}
	if s.badger.IsClosed() {
		return fmt.Errorf("badger is closed")
	}
	return nil
}

// ==================== Session Methods (BadgerDB) ====================

// SetSession stores session data in BadgerDB
func (s *Store) SetSession(key string, value []byte, ttl time.Duration) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte("session:"+key), value).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// GetSession retrieves session data from BadgerDB. Missing or expired
// sessions return apperrors.ErrNotFound.
func (s *Store) GetSession(key string) ([]byte, error) {
	var val []byte
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("session:" + key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.ErrNotFound
	}
	return val, err
}

// DeleteSession removes session data
func (s *Store) DeleteSession(key string) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte("session:" + key))
	})
}

// ==================== KV Methods (BadgerDB) ====================

// SetKV stores a key-value pair
func (s *Store) SetKV(key string, value []byte) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("kv:"+key), value)
	})
}

// GetKV retrieves a value by key
func (s *Store) GetKV(key string) ([]byte, error) {
	var val []byte
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("kv:" + key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.ErrNotFound
	}
	return val, err
}

// RunValueLogGC reclaims badger value-log space until nothing is left to
// rewrite. It returns the number of files rewritten.
func (s *Store) RunValueLogGC(discardRatio float64) (int, error) {
	rewritten := 0
	for {
		err := s.badger.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, err
		}
		rewritten++
	}
}
