package receipts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/extract"
	"github.com/joseph-ayodele/receipt-analytics/internal/ocr"
	"github.com/joseph-ayodele/receipt-analytics/internal/query"
	"github.com/joseph-ayodele/receipt-analytics/internal/repository"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// countingStore records how often List reaches the store.
type countingStore struct {
	repository.Store
	lists atomic.Int32
}

func (c *countingStore) List(ctx context.Context) ([]*entity.Receipt, error) {
	c.lists.Add(1)
	return c.Store.List(ctx)
}

type fakeText struct {
	text string
	err  error
}

func (f fakeText) Extract(_ context.Context, _ string) (ocr.Result, error) {
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Text: f.text, Method: "text"}, nil
}

func newTestService(t *testing.T, opts ...Option) (*Service, *countingStore) {
	t.Helper()
	engine, err := extract.NewEngine(extract.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	store := &countingStore{Store: repository.NewMemoryStore()}
	tick := fixedNow
	opts = append([]Option{WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})}, opts...)
	return NewService(store, engine, opts...), store
}

func doc(vendor, date, amount string) Document {
	text := fmt.Sprintf("%s\n%s\nTOTAL $%s", strings.ToUpper(vendor), date, amount)
	return Document{FileName: strings.ToLower(vendor) + ".txt", Size: int64(len(text)), Text: text}
}

func seed(t *testing.T, s *Service) []*entity.Receipt {
	t.Helper()
	docs := []Document{
		doc("Walmart", "01/15/2024", "127.45"),
		doc("Shell", "01/20/2024", "89.99"),
		doc("Comcast", "02/01/2024", "79.99"),
		doc("Starbucks", "02/14/2024", "12.75"),
		doc("PowerCorp", "03/01/2024", "65.20"),
		doc("CVS", "03/09/2024", "45.99"),
	}
	out := make([]*entity.Receipt, 0, len(docs))
	for _, d := range docs {
		rec, _, err := s.Ingest(context.Background(), d)
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestService_Ingest(t *testing.T) {
	s, _ := newTestService(t)

	rec, res, err := s.Ingest(context.Background(), doc("Walmart", "03/15/2024", "127.45"))
	require.NoError(t, err)
	assert.Equal(t, "Walmart", rec.Vendor)
	assert.Equal(t, constants.Groceries, rec.Category)
	assert.Equal(t, "2024-03-15", rec.Date.String())
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("127.45")))
	assert.Equal(t, constants.StatusProcessed, rec.Status)
	assert.Equal(t, "text/plain", rec.FileType)
	assert.InDelta(t, 1.0, rec.ConfidenceScore, 1e-9)
	assert.Empty(t, res.Failures)
	assert.Equal(t, uint64(1), s.Revision())

	stored, err := s.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Vendor, stored.Vendor)
}

func TestService_IngestBoundary(t *testing.T) {
	s, _ := newTestService(t, WithMaxFileSize(1024))

	tests := []struct {
		name string
		doc  Document
	}{
		{"unsupported type", Document{FileName: "receipt.heic", Size: 10, Text: "walmart"}},
		{"too large", Document{FileName: "receipt.pdf", Size: 4096, Text: "walmart"}},
		{"missing name", Document{Size: 10, Text: "walmart"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Ingest(context.Background(), tt.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation))
		})
	}
	assert.Zero(t, s.Revision())
}

func TestService_IngestEmptyText(t *testing.T) {
	s, _ := newTestService(t)

	rec, res, err := s.Ingest(context.Background(), Document{FileName: "blank.png", Size: 100})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusError, rec.Status)
	assert.Equal(t, entity.DefaultVendor, rec.Vendor)
	assert.True(t, errors.Is(res.Warning, common.ErrEmptyInput))
	assert.False(t, res.AmountFound)
}

func TestService_IngestFromPath(t *testing.T) {
	s, _ := newTestService(t, WithTextSource(fakeText{text: "CVS PHARMACY 2024-02-10 TOTAL: 18.40"}))

	rec, _, err := s.Ingest(context.Background(), Document{Path: "/inbox/scan-001.jpg", Size: 2048})
	require.NoError(t, err)
	assert.Equal(t, "scan-001.jpg", rec.FileName)
	assert.Equal(t, "image/jpeg", rec.FileType)
	assert.Equal(t, "CVS", rec.Vendor)
	assert.Equal(t, "2024-02-10", rec.Date.String())
	assert.Equal(t, "18.40", rec.Amount.StringFixed(2))

	failing, _ := newTestService(t, WithTextSource(fakeText{err: errors.New("tesseract missing")}))
	rec, _, err = failing.Ingest(context.Background(), Document{Path: "/inbox/scan-002.png", Size: 2048})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusError, rec.Status)
}

func TestService_Update(t *testing.T) {
	s, _ := newTestService(t)
	recs := seed(t, s)
	target := recs[1]
	before := s.Revision()

	vendor := "Chevron"
	amount := decimal.RequireFromString("91.10")
	updated, err := s.Update(context.Background(), target.ID, entity.ReceiptUpdate{Vendor: &vendor, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Chevron", updated.Vendor)
	assert.Equal(t, constants.Transportation, updated.Category)
	assert.Equal(t, target.ExtractedText, updated.ExtractedText, "extraction is not re-run")
	assert.Equal(t, target.ConfidenceScore, updated.ConfidenceScore)
	assert.Equal(t, before+1, s.Revision())

	_, err = s.Update(context.Background(), target.ID, entity.ReceiptUpdate{})
	assert.True(t, errors.Is(err, common.ErrValidation))

	negative := decimal.RequireFromString("-1")
	_, err = s.Update(context.Background(), target.ID, entity.ReceiptUpdate{Amount: &negative})
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = s.Update(context.Background(), uuid.New(), entity.ReceiptUpdate{Vendor: &vendor})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestService_Delete(t *testing.T) {
	s, _ := newTestService(t)
	recs := seed(t, s)

	require.NoError(t, s.Delete(context.Background(), recs[0].ID))
	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(recs)-1)

	err = s.Delete(context.Background(), recs[0].ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestService_QueryUsesRevisionCache(t *testing.T) {
	s, store := newTestService(t)
	seed(t, s)
	ctx := context.Background()
	byAmount := query.SortSpec{Field: query.SortByAmount, Direction: query.Asc}

	first, err := s.Query(ctx, query.FilterSpec{}, byAmount)
	require.NoError(t, err)
	require.Len(t, first, 6)
	assert.Equal(t, "Starbucks", first[0].Vendor)

	lists := store.lists.Load()
	again, err := s.Query(ctx, query.FilterSpec{}, byAmount)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, lists, store.lists.Load(), "second query is served from cache")

	vendor := "Target"
	_, err = s.Update(ctx, first[0].ID, entity.ReceiptUpdate{Vendor: &vendor})
	require.NoError(t, err)

	after, err := s.Query(ctx, query.FilterSpec{}, byAmount)
	require.NoError(t, err)
	assert.Equal(t, "Target", after[0].Vendor)
	assert.Greater(t, store.lists.Load(), lists)
}

func TestService_QueryFilters(t *testing.T) {
	s, _ := newTestService(t)
	seed(t, s)

	groceries := constants.Groceries
	got, err := s.Query(context.Background(), query.FilterSpec{Category: &groceries}, query.DefaultSort)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Walmart", got[0].Vendor)

	_, err = s.Query(context.Background(), query.FilterSpec{}, query.SortSpec{Field: "colour", Direction: query.Asc})
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestService_Stats(t *testing.T) {
	s, _ := newTestService(t)
	seed(t, s)

	report, err := s.Stats(context.Background(), query.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 6, report.TotalReceipts)
	assert.Equal(t, "421.37", report.TotalSpend.StringFixed(2))
	assert.Equal(t, "70.23", report.AverageAmount.StringFixed(2))
	assert.Equal(t, "72.595", report.MedianAmount.String())
	require.Len(t, report.MonthlySpending, 3)
	assert.Equal(t, "Jan 2024", report.MonthlySpending[0].Label)

	minimum := decimal.RequireFromString("80")
	big, err := s.Stats(context.Background(), query.FilterSpec{AmountMin: &minimum})
	require.NoError(t, err)
	assert.Equal(t, 2, big.TotalReceipts)
	assert.Equal(t, "217.44", big.TotalSpend.StringFixed(2))
}
