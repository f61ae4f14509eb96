package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

const receiptKind = "receipt"

// Store persists receipt records. Every driver returns an error wrapping
// common.ErrNotFound for an unknown id and common.ErrAlreadyExists when Create
// reuses one. List returns records ordered by upload date, then id.
type Store interface {
	Create(ctx context.Context, r *entity.Receipt) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	Update(ctx context.Context, r *entity.Receipt) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*entity.Receipt, error)
	Close() error
}

func clone(r *entity.Receipt) *entity.Receipt {
	c := *r
	return &c
}

func sortByUpload(rs []*entity.Receipt) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].UploadDate.Equal(rs[j].UploadDate) {
			return rs[i].UploadDate.Before(rs[j].UploadDate)
		}
		return rs[i].ID.String() < rs[j].ID.String()
	})
}
