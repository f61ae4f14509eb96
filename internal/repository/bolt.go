package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

var receiptsBucket = []byte("receipts")

// BoltStore keeps one JSON document per receipt in a bbolt bucket keyed by id.
type BoltStore struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string, logger *slog.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(receiptsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	logger.Info("bolt store opened", "path", path)
	return &BoltStore{db: db, logger: logger}, nil
}

func (b *BoltStore) Create(_ context.Context, r *entity.Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(receiptsBucket)
		key := r.ID[:]
		if bucket.Get(key) != nil {
			return common.AlreadyExists(receiptKind, r.ID.String())
		}
		return bucket.Put(key, data)
	})
}

func (b *BoltStore) Get(_ context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var r entity.Receipt
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(receiptsBucket).Get(id[:])
		if data == nil {
			return common.NotFound(receiptKind, id.String())
		}
		return json.Unmarshal(data, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (b *BoltStore) Update(_ context.Context, r *entity.Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(receiptsBucket)
		if bucket.Get(r.ID[:]) == nil {
			return common.NotFound(receiptKind, r.ID.String())
		}
		return bucket.Put(r.ID[:], data)
	})
}

func (b *BoltStore) Delete(_ context.Context, id uuid.UUID) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(receiptsBucket)
		if bucket.Get(id[:]) == nil {
			return common.NotFound(receiptKind, id.String())
		}
		return bucket.Delete(id[:])
	})
}

func (b *BoltStore) List(_ context.Context) ([]*entity.Receipt, error) {
	out := make([]*entity.Receipt, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(receiptsBucket).ForEach(func(_, v []byte) error {
			var r entity.Receipt
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshaling receipt: %w", err)
			}
			out = append(out, &r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByUpload(out)
	return out, nil
}

func (b *BoltStore) Close() error {
	b.logger.Info("closing bolt store")
	return b.db.Close()
}
