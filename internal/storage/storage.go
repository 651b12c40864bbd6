package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/sonic/internal/engine"
)

// Storage keys
const (
	keyOptions     = "options"
	keyFirstLaunch = "first_launch"
)

// Options are the engine settings that survive a restart: everything a GUI
// can change through setoption.
type Options struct {
	Hash      int            `json:"hash"`
	Book      string         `json:"book"`
	Params    map[string]int `json:"params"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DefaultOptions returns the built-in settings.
func DefaultOptions() *Options {
	p := engine.DefaultParams()
	return &Options{
		Hash:   engine.DefaultHashMB,
		Params: p.Values(),
	}
}

// Apply copies the options into eng. Unknown parameter names are skipped
// and reported in the returned error.
func (o *Options) Apply(eng *engine.Engine) error {
	eng.ResizeHash(o.Hash)

	p := eng.Params()
	var errs []error
	for name, v := range o.Params {
		if _, err := p.Set(name, v); err != nil {
			errs = append(errs, err)
		}
	}
	eng.SetParams(p)
	return errors.Join(errs...)
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database under dataDir. An empty dataDir
// means the platform default.
func Open(dataDir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}
	return open(badger.DefaultOptions(dbDir))
}

// OpenInMemory opens a database that is discarded on Close.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch reports whether MarkFirstLaunchComplete was never called.
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete records that the engine has run before.
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SaveOptions stores opts, stamping UpdatedAt.
func (s *Storage) SaveOptions(opts *Options) error {
	opts.UpdatedAt = time.Now()

	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyOptions), data)
	})
}

// LoadOptions loads the stored options. Missing keys keep their defaults.
func (s *Storage) LoadOptions() (*Options, error) {
	opts := DefaultOptions()
	defaults := maps.Clone(opts.Params)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyOptions))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, opts)
		})
	})

	// A null params value clears the map.
	for name, v := range defaults {
		if _, ok := opts.Params[name]; !ok {
			if opts.Params == nil {
				opts.Params = map[string]int{}
			}
			opts.Params[name] = v
		}
	}
	return opts, err
}
