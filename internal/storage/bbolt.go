package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // version, timestamps, device ID
	HistoryBucket = []byte("history") // sealed clipboard updates
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigDeviceID = []byte("device_id")
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrNotInitialized = errors.New("history not initialized")
)

// Storage provides BBolt-based storage for the clipboard history
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a history database
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket structure. It is safe to call on an
// already initialized database.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, HistoryBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}

		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		return config.Put(ConfigCreated, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetCreated retrieves the creation timestamp
func (s *Storage) GetCreated() (time.Time, error) {
	var created time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigCreated)
		if data == nil {
			return fmt.Errorf("created time not found")
		}
		return created.UnmarshalBinary(data)
	})
	return created, err
}

// GetOrCreateDeviceID retrieves the device ID or generates a new one.
// The ID tags updates published from this history.
func (s *Storage) GetOrCreateDeviceID() (string, error) {
	var deviceID string
	err := s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		if data := config.Get(ConfigDeviceID); data != nil {
			deviceID = string(data)
			return nil
		}
		deviceID = uuid.NewString()
		return config.Put(ConfigDeviceID, []byte(deviceID))
	})
	return deviceID, err
}

// Append stores a record and assigns its sequence number.
// The payload must be a well-formed envelope.
func (s *Storage) Append(rec *Record) error {
	if err := rec.Payload.Validate(); err != nil {
		return fmt.Errorf("refusing to store record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return ErrNotInitialized
		}

		seq, err := history.NextSequence()
		if err != nil {
			return err
		}
		rec.Seq = seq

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return history.Put(seqKey(seq), data)
	})
}

// Get returns the record with the given sequence number
func (s *Storage) Get(seq uint64) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return ErrNotInitialized
		}
		data := history.Get(seqKey(seq))
		if data == nil {
			return ErrNotFound
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})
	return rec, err
}

// List returns all records, oldest first
func (s *Storage) List() ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return ErrNotInitialized
		}
		return history.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// Count returns the number of stored records
func (s *Storage) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return ErrNotInitialized
		}
		n = history.Stats().KeyN
		return nil
	})
	return n, err
}

// Delete removes a single record
func (s *Storage) Delete(seq uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return ErrNotInitialized
		}
		if history.Get(seqKey(seq)) == nil {
			return ErrNotFound
		}
		return history.Delete(seqKey(seq))
	})
}

// Prune keeps the newest limit records and deletes the rest.
// It returns the number of deleted records. A limit of 0 keeps nothing.
func (s *Storage) Prune(limit int) (int, error) {
	var deleted int
	err := s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return ErrNotInitialized
		}

		excess := history.Stats().KeyN - limit
		if excess <= 0 {
			return nil
		}

		// Collect first, deleting under a live cursor skips keys
		keys := make([][]byte, 0, excess)
		c := history.Cursor()
		for k, _ := c.First(); k != nil && len(keys) < excess; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := history.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// Clear removes all records. Sequence numbers keep increasing afterwards.
func (s *Storage) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return ErrNotInitialized
		}
		seq := history.Sequence()
		if err := tx.DeleteBucket(HistoryBucket); err != nil {
			return err
		}
		fresh, err := tx.CreateBucket(HistoryBucket)
		if err != nil {
			return err
		}
		return fresh.SetSequence(seq)
	})
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after pruning or clearing history to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets, including sequence counters
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
