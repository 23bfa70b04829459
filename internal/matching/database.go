package matching

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const comparisonBucketName = "comparisons"

// DB defines the interface for database operations
type DB interface {
	// SaveComparison saves a comparison to the database
	SaveComparison(comparison *Comparison) error

	// GetComparison retrieves a comparison by ID
	GetComparison(id string) (*Comparison, error)

	// ListComparisons returns all comparisons
	ListComparisons() ([]*Comparison, error)

	// DeleteComparison removes a comparison from the database
	DeleteComparison(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(comparisonBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveComparison saves a comparison to the database
func (b *BoltDB) SaveComparison(comparison *Comparison) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		data, err := json.Marshal(comparison)
		if err != nil {
			return fmt.Errorf("marshaling comparison: %w", err)
		}
		return bucket.Put([]byte(comparison.ID), data)
	})
}

// GetComparison retrieves a comparison by ID
func (b *BoltDB) GetComparison(id string) (*Comparison, error) {
	var comparison *Comparison
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("comparison not found: %s", id)
		}
		return json.Unmarshal(data, &comparison)
	})
	if err != nil {
		return nil, err
	}
	return comparison, nil
}

// ListComparisons returns all comparisons
func (b *BoltDB) ListComparisons() ([]*Comparison, error) {
	comparisons := make([]*Comparison, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var comparison Comparison
			if err := json.Unmarshal(v, &comparison); err != nil {
				return fmt.Errorf("unmarshaling comparison: %w", err)
			}
			comparisons = append(comparisons, &comparison)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return comparisons, nil
}

// DeleteComparison removes a comparison from the database
func (b *BoltDB) DeleteComparison(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
