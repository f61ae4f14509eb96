package receipts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/cache"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/extract"
	"github.com/joseph-ayodele/receipt-analytics/internal/ocr"
	"github.com/joseph-ayodele/receipt-analytics/internal/query"
	"github.com/joseph-ayodele/receipt-analytics/internal/repository"
	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

// TextSource obtains raw text from a document on disk.
type TextSource interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// Document is one upload handed to Ingest. Either Path is read through the
// TextSource, or Text is used as already-acquired raw text.
type Document struct {
	FileName    string
	Size        int64
	Path        string
	Text        string
	Description string
}

// Service handles receipt business logic. Every mutation bumps the collection
// revision, which keys the query and stats caches.
type Service struct {
	store  repository.Store
	engine *extract.Engine
	text   TextSource
	logger *slog.Logger

	now         func() time.Time
	newID       func() uuid.UUID
	maxFileSize int64
	allowedExts map[string]struct{}

	mu        sync.Mutex
	rev       atomic.Uint64
	queries   *cache.Cache[[]*entity.Receipt]
	snapshots *cache.Cache[stats.Report]
}

type Option func(*Service)

func WithTextSource(t TextSource) Option { return func(s *Service) { s.text = t } }

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(f func() uuid.UUID) Option { return func(s *Service) { s.newID = f } }

// WithMaxFileSize bounds accepted documents; n <= 0 keeps the default.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithAllowedExts narrows the accepted extensions to a subset of constants.AllowedExtensions.
func WithAllowedExts(exts []string) Option {
	return func(s *Service) {
		if len(exts) == 0 {
			return
		}
		allowed := make(map[string]struct{}, len(exts))
		for _, e := range exts {
			e = constants.NormalizeExt(e)
			if _, ok := constants.AllowedExtensions[e]; ok {
				allowed[e] = struct{}{}
			}
		}
		s.allowedExts = allowed
	}
}

// NewService creates a new receipt service.
func NewService(store repository.Store, engine *extract.Engine, opts ...Option) *Service {
	s := &Service{
		store:       store,
		engine:      engine,
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.New,
		maxFileSize: constants.DefaultMaxFileSize,
		allowedExts: constants.AllowedExtensions,
		queries:     cache.New[[]*entity.Receipt](),
		snapshots:   cache.New[stats.Report](),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Revision is the collection version; it changes on every create, update and delete.
func (s *Service) Revision() uint64 { return s.rev.Load() }

// ValidateDocument is the upload boundary: accepted type, size within bound.
func (s *Service) ValidateDocument(doc Document) error {
	v := common.NewValidator()
	v.Field("fileName", doc.FileName, common.Required, common.MaxLength(255))
	ext := constants.NormalizeExt(filepath.Ext(doc.FileName))
	_, ok := s.allowedExts[ext]
	v.Check(ok, "fileType", ext, "is not an accepted document type")
	v.Check(doc.Size >= 0, "fileSize", doc.Size, "must not be negative")
	v.Check(doc.Size <= s.maxFileSize, "fileSize", doc.Size, fmt.Sprintf("exceeds the %d byte limit", s.maxFileSize))
	return v.Error()
}

// Ingest validates the document, extracts its fields and stores the record.
// Extraction trouble never fails the call: the record is stored with status error.
func (s *Service) Ingest(ctx context.Context, doc Document) (*entity.Receipt, extract.Result, error) {
	logger := common.LoggerFrom(ctx, s.logger)
	if doc.Path != "" && doc.Size == 0 {
		if fi, err := os.Stat(doc.Path); err == nil {
			doc.Size = fi.Size()
		}
	}
	if doc.FileName == "" && doc.Path != "" {
		doc.FileName = filepath.Base(doc.Path)
	}
	if err := s.ValidateDocument(doc); err != nil {
		logger.Warn("document rejected", "file", doc.FileName, "error", err)
		return nil, extract.Result{}, err
	}

	raw := doc.Text
	if doc.Path != "" && s.text != nil {
		res, err := s.text.Extract(ctx, doc.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, extract.Result{}, ctx.Err()
			}
			logger.Warn("text acquisition failed", "file", doc.FileName, "error", err)
		}
		raw = res.Text
	}

	rec := &entity.Receipt{
		ID:          s.newID(),
		FileName:    doc.FileName,
		FileType:    constants.DetectFileType(doc.FileName),
		FileSize:    doc.Size,
		Description: doc.Description,
		UploadDate:  s.now().UTC(),
		Status:      constants.StatusProcessing,
	}
	res := s.engine.Extract(raw, doc.FileName)
	if err := res.Apply(rec); err != nil {
		return nil, res, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Create(ctx, rec); err != nil {
		logger.Error("failed to store receipt", "id", rec.ID, "error", err)
		return nil, res, fmt.Errorf("create receipt: %w", err)
	}
	s.bump()

	logger.Info("receipt ingested", "id", rec.ID, "file", rec.FileName, "vendor", rec.Vendor,
		"amount", rec.Amount.StringFixed(2), "status", rec.Status, "confidence", rec.ConfidenceScore)
	return rec, res, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	return s.store.Get(ctx, id)
}

// List returns every record in upload order.
func (s *Service) List(ctx context.Context) ([]*entity.Receipt, error) {
	rev := s.Revision()
	if v, ok := s.queries.Get(rev, "all"); ok {
		return v, nil
	}
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	s.queries.Put(rev, "all", recs)
	return recs, nil
}

// Update applies a partial overwrite. Extraction is not re-run.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd entity.ReceiptUpdate) (*entity.Receipt, error) {
	if upd.IsEmpty() {
		return nil, common.NewValidator().Check(false, "update", "", "must set at least one field").Error()
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := upd.Apply(*cur)
	if err := s.store.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("update receipt: %w", err)
	}
	s.bump()
	common.LoggerFrom(ctx, s.logger).Info("receipt updated", "id", id)
	return &next, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.bump()
	common.LoggerFrom(ctx, s.logger).Info("receipt deleted", "id", id)
	return nil
}

// Query filters then sorts the collection. Both specs are validated first.
func (s *Service) Query(ctx context.Context, f query.FilterSpec, sortBy query.SortSpec) ([]*entity.Receipt, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := sortBy.Validate(); err != nil {
		return nil, err
	}
	rev := s.Revision()
	key := f.Key() + "|" + sortBy.String()
	if v, ok := s.queries.Get(rev, key); ok {
		return v, nil
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := query.Sort(query.Filter(all, f), sortBy)
	s.queries.Put(rev, key, out)
	return out, nil
}

// Stats aggregates the records matching f. An empty filter covers the whole collection.
func (s *Service) Stats(ctx context.Context, f query.FilterSpec) (stats.Report, error) {
	if err := f.Validate(); err != nil {
		return stats.Report{}, err
	}
	rev := s.Revision()
	key := f.Key()
	if v, ok := s.snapshots.Get(rev, key); ok {
		return v, nil
	}
	all, err := s.List(ctx)
	if err != nil {
		return stats.Report{}, err
	}
	report := stats.BuildReport(query.Filter(all, f))
	s.snapshots.Put(rev, key, report)
	return report, nil
}

// bump must be called with mu held, after the store write succeeded.
func (s *Service) bump() {
	s.rev.Add(1)
	s.queries.Invalidate()
	s.snapshots.Invalidate()
}
