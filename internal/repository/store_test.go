package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

var base = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newReceipt(vendor, amount string, uploaded time.Time) *entity.Receipt {
	return &entity.Receipt{
		ID:              uuid.New(),
		FileName:        vendor + ".pdf",
		FileType:        "application/pdf",
		FileSize:        2048,
		Vendor:          vendor,
		Date:            entity.NewDate(2024, time.February, 14),
		Amount:          decimal.RequireFromString(amount),
		Category:        constants.Groceries,
		Description:     "weekly shop",
		UploadDate:      uploaded,
		Status:          constants.StatusProcessed,
		ExtractedText:   "walmart total $" + amount,
		ConfidenceScore: 0.8,
	}
}

// storeContract runs the behaviour every driver must share.
func storeContract(open func() Store) {
	var (
		ctx   context.Context
		store Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = open()
	})

	AfterEach(func() {
		if store != nil {
			Expect(store.Close()).To(Succeed())
		}
	})

	Describe("Create and Get", func() {
		It("round-trips every field", func() {
			r := newReceipt("Walmart", "127.45", base)
			Expect(store.Create(ctx, r)).To(Succeed())

			got, err := store.Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(r.ID))
			Expect(got.FileName).To(Equal("Walmart.pdf"))
			Expect(got.FileType).To(Equal("application/pdf"))
			Expect(got.FileSize).To(Equal(int64(2048)))
			Expect(got.Vendor).To(Equal("Walmart"))
			Expect(got.Date.Equal(r.Date)).To(BeTrue())
			Expect(got.Amount.Equal(r.Amount)).To(BeTrue())
			Expect(got.Category).To(Equal(constants.Groceries))
			Expect(got.Description).To(Equal("weekly shop"))
			Expect(got.UploadDate.Equal(base)).To(BeTrue())
			Expect(got.Status).To(Equal(constants.StatusProcessed))
			Expect(got.ExtractedText).To(Equal(r.ExtractedText))
			Expect(got.ConfidenceScore).To(BeNumerically("~", 0.8, 1e-9))
		})

		It("keeps a zero date for records that failed extraction", func() {
			r := newReceipt("Unknown Vendor", "0", base)
			r.Date = entity.Date{}
			r.Status = constants.StatusError
			Expect(store.Create(ctx, r)).To(Succeed())

			got, err := store.Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Date.IsZero()).To(BeTrue())
		})

		It("rejects a reused id", func() {
			r := newReceipt("Shell", "89.99", base)
			Expect(store.Create(ctx, r)).To(Succeed())

			err := store.Create(ctx, r)
			Expect(errors.Is(err, common.ErrAlreadyExists)).To(BeTrue())
		})

		It("returns not found for an unknown id", func() {
			_, err := store.Get(ctx, uuid.New())
			Expect(errors.Is(err, common.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("overwrites the stored record", func() {
			r := newReceipt("Comcast", "79.99", base)
			Expect(store.Create(ctx, r)).To(Succeed())

			r.Vendor = "Xfinity"
			r.Amount = decimal.RequireFromString("81.00")
			r.Category = constants.Internet
			Expect(store.Update(ctx, r)).To(Succeed())

			got, err := store.Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Vendor).To(Equal("Xfinity"))
			Expect(got.Amount.String()).To(Equal("81"))
			Expect(got.Category).To(Equal(constants.Internet))
		})

		It("returns not found for an unknown id", func() {
			err := store.Update(ctx, newReceipt("Ghost", "1.00", base))
			Expect(errors.Is(err, common.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes the record", func() {
			r := newReceipt("CVS", "45.99", base)
			Expect(store.Create(ctx, r)).To(Succeed())
			Expect(store.Delete(ctx, r.ID)).To(Succeed())

			_, err := store.Get(ctx, r.ID)
			Expect(errors.Is(err, common.ErrNotFound)).To(BeTrue())
			Expect(errors.Is(store.Delete(ctx, r.ID), common.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("orders by upload date", func() {
			late := newReceipt("Late", "3.00", base.Add(2*time.Hour))
			early := newReceipt("Early", "1.00", base)
			mid := newReceipt("Mid", "2.00", base.Add(time.Hour))
			for _, r := range []*entity.Receipt{late, early, mid} {
				Expect(store.Create(ctx, r)).To(Succeed())
			}

			got, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			Expect([]string{got[0].Vendor, got[1].Vendor, got[2].Vendor}).To(Equal([]string{"Early", "Mid", "Late"}))
		})

		It("returns an empty slice for an empty store", func() {
			got, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got).To(BeEmpty())
		})
	})
}

var _ = Describe("MemoryStore", func() {
	storeContract(func() Store { return NewMemoryStore() })

	It("hands out copies", func() {
		ctx := context.Background()
		s := NewMemoryStore()
		r := newReceipt("Walmart", "10.00", base)
		Expect(s.Create(ctx, r)).To(Succeed())

		r.Vendor = "mutated"
		got, err := s.Get(ctx, r.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Vendor).To(Equal("Walmart"))
	})
})

var _ = Describe("SQLite store", func() {
	storeContract(func() Store {
		s, err := OpenSQLite(context.Background(), filepath.Join(GinkgoT().TempDir(), "receipts.db"), nil)
		Expect(err).NotTo(HaveOccurred())
		return s
	})

	It("reopens an existing database", func() {
		ctx := context.Background()
		path := filepath.Join(GinkgoT().TempDir(), "reopen.db")
		s, err := OpenSQLite(ctx, path, nil)
		Expect(err).NotTo(HaveOccurred())
		r := newReceipt("Target", "19.99", base)
		Expect(s.Create(ctx, r)).To(Succeed())
		Expect(s.Close()).To(Succeed())

		s, err = OpenSQLite(ctx, path, nil)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		got, err := s.Get(ctx, r.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Vendor).To(Equal("Target"))
	})

	It("creates the receipts table and its indexes", func() {
		ctx := context.Background()
		st, err := OpenSQLite(ctx, filepath.Join(GinkgoT().TempDir(), "schema.db"), nil)
		Expect(err).NotTo(HaveOccurred())
		defer st.Close()
		s := st.(*sqlStore)
		Expect(s.migrate(ctx)).To(Succeed())

		var rows entsql.Rows
		Expect(s.drv.Query(ctx, "SELECT name FROM sqlite_master WHERE tbl_name = ?", []any{receiptsTable}, &rows)).To(Succeed())
		defer rows.Close()
		var names []string
		for rows.Next() {
			var name string
			Expect(rows.Scan(&name)).To(Succeed())
			names = append(names, name)
		}
		Expect(rows.Err()).NotTo(HaveOccurred())
		Expect(names).To(ContainElements("receipts", "receipts_upload_date_idx", "receipts_date_idx"))
	})
})

var _ = Describe("Bolt store", func() {
	storeContract(func() Store {
		s, err := OpenBolt(filepath.Join(GinkgoT().TempDir(), "receipts.bolt"), nil)
		Expect(err).NotTo(HaveOccurred())
		return s
	})
})

var _ = Describe("Postgres store", func() {
	dsn := os.Getenv("RECEIPTS_TEST_DB_URL")

	BeforeEach(func() {
		if dsn == "" {
			Skip("RECEIPTS_TEST_DB_URL not set")
		}
	})

	storeContract(func() Store {
		ctx := context.Background()
		s, err := OpenPostgres(ctx, common.StoreConfig{DSN: dsn, DialTimeout: 5 * time.Second}, nil)
		Expect(err).NotTo(HaveOccurred())
		// start every spec from an empty table
		list, err := s.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		for _, r := range list {
			Expect(s.Delete(ctx, r.ID)).To(Succeed())
		}
		return s
	})
})

var _ = Describe("Open", func() {
	It("selects the driver from config", func() {
		s, err := Open(context.Background(), common.StoreConfig{Driver: "memory"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&MemoryStore{}))
	})

	It("rejects an unknown driver", func() {
		_, err := Open(context.Background(), common.StoreConfig{Driver: "mongo"}, nil)
		Expect(err).To(HaveOccurred())
		var appErr *common.AppError
		Expect(errors.As(err, &appErr)).To(BeTrue())
		Expect(appErr.Code).To(Equal(common.CodeConfig))
	})
})
