package certificate

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	filesBucketName    = "files"
	settingsBucketName = "settings"

	credentialKey    = "credential"
	referenceTextKey = "reference_table"
)

// DB defines the interface for database operations
type DB interface {
	// SaveFile saves a processed-file record
	SaveFile(file *ProcessedFile) error

	// GetFile retrieves a processed-file record by ID
	GetFile(id string) (*ProcessedFile, error)

	// ListFiles returns all processed-file records in queue order
	ListFiles() ([]*ProcessedFile, error)

	// DeleteAllFiles removes every processed-file record
	DeleteAllFiles() error

	// SaveCredential persists the operator's API credential
	SaveCredential(credential string) error

	// Credential returns the persisted API credential, or ""
	Credential() (string, error)

	// SaveReferenceText persists the pasted reference-table text
	SaveReferenceText(text string) error

	// ReferenceText returns the persisted reference-table text, or ""
	ReferenceText() (string, error)

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
		if _, err := tx.CreateBucketIfNotExists([]byte(filesBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(settingsBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveFile saves a processed-file record
func (b *BoltDB) SaveFile(file *ProcessedFile) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(filesBucketName))
		data, err := json.Marshal(file)
		if err != nil {
			return fmt.Errorf("marshaling file record: %w", err)
		}
		return bucket.Put([]byte(file.ID), data)
	})
}

// GetFile retrieves a processed-file record by ID
func (b *BoltDB) GetFile(id string) (*ProcessedFile, error) {
	var file *ProcessedFile
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(filesBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("file not found: %s", id)
		}
		return json.Unmarshal(data, &file)
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// ListFiles returns all processed-file records sorted by queue position
func (b *BoltDB) ListFiles() ([]*ProcessedFile, error) {
	files := make([]*ProcessedFile, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(filesBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var file ProcessedFile
			if err := json.Unmarshal(v, &file); err != nil {
				return fmt.Errorf("unmarshaling file record: %w", err)
			}
			files = append(files, &file)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Seq < files[j].Seq })
	return files, nil
}

// DeleteAllFiles removes every processed-file record
func (b *BoltDB) DeleteAllFiles() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(filesBucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(filesBucketName))
		return err
	})
}

// SaveCredential persists the operator's API credential
func (b *BoltDB) SaveCredential(credential string) error {
	return b.putSetting(credentialKey, credential)
}

// Credential returns the persisted API credential, or ""
func (b *BoltDB) Credential() (string, error) {
	return b.getSetting(credentialKey)
}

// SaveReferenceText persists the pasted reference-table text
func (b *BoltDB) SaveReferenceText(text string) error {
	return b.putSetting(referenceTextKey, text)
}

// ReferenceText returns the persisted reference-table text, or ""
func (b *BoltDB) ReferenceText() (string, error) {
	return b.getSetting(referenceTextKey)
}

func (b *BoltDB) putSetting(key, value string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(settingsBucketName))
		return bucket.Put([]byte(key), []byte(value))
	})
}

func (b *BoltDB) getSetting(key string) (string, error) {
	var value string
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(settingsBucketName))
		value = string(bucket.Get([]byte(key)))
		return nil
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
