package store

import (
	"context"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// errBoltKeyMissing marks a key absent from the documents bucket.
var errBoltKeyMissing = errors.New("store: bolt key not found")

func loadBolt(ctx context.Context, db *bolt.DB, bucket, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("store: bolt key is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var data []byte
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return errBoltKeyMissing
		}
		v := b.Get([]byte(key))
		if v == nil {
			return errBoltKeyMissing
		}
		// v is only valid for the life of the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

func saveBolt(ctx context.Context, db *bolt.DB, bucket, key string, data []byte) error {
	if key == "" {
		return errors.New("store: bolt key is required")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
		return b.Put([]byte(key), data)
	})
}

// listBolt returns the keys stored in bucket in byte order.
func listBolt(db *bolt.DB, bucket string) ([]string, error) {
	var keys []string
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
