package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const sessionBucket = "Sessions"

// SessionStorage is a bbolt-backed store satisfying fiber's session storage
// interface. Sessions survive a console restart; everything else in the
// process is session-lifetime cache.
type SessionStorage struct {
	db   *bbolt.DB
	done chan struct{}
}

// NewSessionStorage opens (creating if needed) the session database under
// dataDir.
func NewSessionStorage(dataDir string) (*SessionStorage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "placemail.db")
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SessionStorage{db: db, done: make(chan struct{})}
	go s.cleanupLoop()
	return s, nil
}

// Records are stored as an 8-byte big-endian expiry (unix nanos, zero means
// no expiry) followed by the session payload.

// Get retrieves a session value. Expired or missing keys return nil, nil; an
// expired record is deleted so the database does not accumulate dead keys.
func (s *SessionStorage) Get(key string) ([]byte, error) {
	var value []byte
	expired := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(sessionBucket)).Get([]byte(key))
		if len(raw) < 8 {
			return nil
		}
		exp := int64(binary.BigEndian.Uint64(raw[:8]))
		if exp != 0 && time.Now().UnixNano() > exp {
			expired = true
			return nil
		}
		value = append([]byte(nil), raw[8:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		if err := s.Delete(key); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// Set stores a session value with an expiration.
func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	var expAt int64
	if exp > 0 {
		expAt = time.Now().Add(exp).UnixNano()
	}
	record := make([]byte, 8+len(val))
	binary.BigEndian.PutUint64(record[:8], uint64(expAt))
	copy(record[8:], val)

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(key), record)
	})
}

// Delete removes a session.
func (s *SessionStorage) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Delete([]byte(key))
	})
}

// Reset removes all sessions.
func (s *SessionStorage) Reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(sessionBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	})
}

// Close stops the cleanup loop and closes the underlying database.
func (s *SessionStorage) Close() error {
	close(s.done)
	return s.db.Close()
}

// sweepExpired deletes every record past its expiry. Sessions that are never
// read again would otherwise sit in the database forever.
func (s *SessionStorage) sweepExpired() error {
	now := time.Now().UnixNano()
	return s.db.Update(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(sessionBucket)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) < 8 {
				continue
			}
			exp := int64(binary.BigEndian.Uint64(v[:8]))
			if exp != 0 && now > exp {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *SessionStorage) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.sweepExpired()
		case <-s.done:
			return
		}
	}
}
