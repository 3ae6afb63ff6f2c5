package state

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Fixed keys in the embedded store.
const (
	configKey   = "device:config"
	scheduleKey = "device:schedule"
)

// BadgerStore keeps device state in an embedded BadgerDB, which survives
// restarts and power loss on the device's local disk.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the store under dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Config() (DeviceConfig, error) {
	var cfg DeviceConfig
	if err := s.get(configKey, &cfg); err != nil {
		return DeviceConfig{}, err
	}
	return cfg, nil
}

func (s *BadgerStore) SaveConfig(cfg DeviceConfig) error {
	return s.set(configKey, cfg)
}

func (s *BadgerStore) CachedSchedule() (CachedSchedule, error) {
	var sched CachedSchedule
	if err := s.get(scheduleKey, &sched); err != nil {
		return CachedSchedule{}, err
	}
	return sched, nil
}

func (s *BadgerStore) SaveSchedule(sched CachedSchedule) error {
	return s.set(scheduleKey, sched)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) get(key string, out any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

func (s *BadgerStore) set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}
