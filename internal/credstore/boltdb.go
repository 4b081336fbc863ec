package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/workhive/desk/domain"
)

const bucketName = "session"

// Storage keys. Both are written in one transaction and cleared in one
// transaction so the stored pair can never diverge.
var (
	keyToken = []byte("token")
	keyUser  = []byte("user")
)

// Store persists the credential token and serialized identity across
// restarts. It is the durable half of the session: the in-memory state
// machine owns transitions, this file survives them.
type Store struct {
	db *bolt.DB
}

// Open initializes the Bolt file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Save writes token and identity together.
func (s *Store) Save(creds domain.Credentials) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(creds.Identity)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Put(keyToken, []byte(creds.Token)); err != nil {
			return err
		}
		return b.Put(keyUser, payload)
	})
}

// Load reads the stored pair. A missing or partial pair yields empty
// Credentials (Complete() == false), never an error: an absent session
// is a normal state, not a failure.
func (s *Store) Load() (domain.Credentials, error) {
	if s == nil || s.db == nil {
		return domain.Credentials{}, bolt.ErrDatabaseNotOpen
	}
	var creds domain.Credentials
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		token := b.Get(keyToken)
		user := b.Get(keyUser)
		if len(token) == 0 || len(user) == 0 {
			return nil
		}
		var identity domain.Identity
		if err := json.Unmarshal(user, &identity); err != nil {
			// Corrupt cache behaves like no cache.
			return nil
		}
		creds.Token = string(token)
		creds.Identity = &identity
		return nil
	})
	return creds, err
}

// Clear removes both keys together. Clearing an already-empty store is
// a no-op.
func (s *Store) Clear() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Delete(keyToken); err != nil {
			return err
		}
		return b.Delete(keyUser)
	})
}

// Ping verifies the underlying file is still usable.
func (s *Store) Ping() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
