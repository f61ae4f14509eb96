package repository

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

const (
	receiptsTable = "receipts"
	// fixed width so the text column orders chronologically
	uploadLayout = "2006-01-02T15:04:05.000000000Z"
)

var receiptColumns = []string{
	"id", "file_name", "file_type", "file_size", "vendor", "date", "amount", "category",
	"description", "upload_date", "status", "extracted_text", "confidence_score",
}

// sqlStore is the Store shared by the SQLite and Postgres drivers. Statements are
// built with the ent dialect builder so both dialects get correct quoting and placeholders.
type sqlStore struct {
	drv     *entsql.Driver
	dialect string
	logger  *slog.Logger
	onClose func()
}

func newSQLStore(db *stdsql.DB, dialect string, logger *slog.Logger) *sqlStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlStore{
		drv:     entsql.OpenDB(dialect, db),
		dialect: dialect,
		logger:  logger,
	}
}

func (s *sqlStore) builder() *entsql.DialectBuilder { return entsql.Dialect(s.dialect) }

var schemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS receipts (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		file_type TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		vendor TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		upload_date TEXT NOT NULL,
		status TEXT NOT NULL,
		extracted_text TEXT NOT NULL,
		confidence_score DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS receipts_upload_date_idx ON receipts (upload_date, id)`,
	`CREATE INDEX IF NOT EXISTS receipts_date_idx ON receipts (date)`,
}

// migrate creates the receipts table and its indexes when missing. The DDL is
// valid for both SQLite and Postgres.
func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range schemaStmts {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *sqlStore) exec(ctx context.Context, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, common.NewAppError(common.CodeDatabase, "exec", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.NewAppError(common.CodeDatabase, "rows affected", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	return n, nil
}

func (s *sqlStore) Create(ctx context.Context, r *entity.Receipt) error {
	ins := s.builder().Insert(receiptsTable).
		Columns(receiptColumns...).
		Values(rowValues(r)...).
		OnConflict(entsql.DoNothing())
	n, err := s.exec(ctx, ins)
	if err != nil {
		s.logger.Error("failed to create receipt", "id", r.ID, "error", err)
		return err
	}
	if n == 0 {
		return common.AlreadyExists(receiptKind, r.ID.String())
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	b := s.builder()
	sel := b.Select(receiptColumns...).
		From(b.Table(receiptsTable)).
		Where(entsql.EQ("id", id.String()))
	out, err := s.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, common.NotFound(receiptKind, id.String())
	}
	return out[0], nil
}

func (s *sqlStore) Update(ctx context.Context, r *entity.Receipt) error {
	vals := rowValues(r)
	upd := s.builder().Update(receiptsTable)
	for i, col := range receiptColumns[1:] {
		upd = upd.Set(col, vals[i+1])
	}
	upd = upd.Where(entsql.EQ("id", r.ID.String()))
	n, err := s.exec(ctx, upd)
	if err != nil {
		s.logger.Error("failed to update receipt", "id", r.ID, "error", err)
		return err
	}
	if n == 0 {
		return common.NotFound(receiptKind, r.ID.String())
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, id uuid.UUID) error {
	del := s.builder().Delete(receiptsTable).Where(entsql.EQ("id", id.String()))
	n, err := s.exec(ctx, del)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.NotFound(receiptKind, id.String())
	}
	return nil
}

func (s *sqlStore) List(ctx context.Context) ([]*entity.Receipt, error) {
	b := s.builder()
	sel := b.Select(receiptColumns...).
		From(b.Table(receiptsTable)).
		OrderBy("upload_date", "id")
	out, err := s.query(ctx, sel)
	if err != nil {
		s.logger.Error("failed to list receipts", "error", err)
		return nil, err
	}
	return out, nil
}

func (s *sqlStore) Close() error {
	err := s.drv.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

func (s *sqlStore) query(ctx context.Context, sel *entsql.Selector) ([]*entity.Receipt, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "query receipts", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer rows.Close()

	out := make([]*entity.Receipt, 0)
	for rows.Next() {
		r, err := scanReceipt(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "iterate receipts", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	return out, nil
}

func rowValues(r *entity.Receipt) []any {
	return []any{
		r.ID.String(),
		r.FileName,
		r.FileType,
		r.FileSize,
		r.Vendor,
		r.Date.String(),
		r.Amount.String(),
		string(r.Category),
		r.Description,
		r.UploadDate.UTC().Format(uploadLayout),
		string(r.Status),
		r.ExtractedText,
		r.ConfidenceScore,
	}
}

func scanReceipt(rows *entsql.Rows) (*entity.Receipt, error) {
	var (
		id, date, amount, category, upload, status string
		r                                          entity.Receipt
	)
	err := rows.Scan(&id, &r.FileName, &r.FileType, &r.FileSize, &r.Vendor, &date, &amount,
		&category, &r.Description, &upload, &status, &r.ExtractedText, &r.ConfidenceScore)
	if err != nil {
		return nil, fmt.Errorf("scan receipt: %w", err)
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("scan receipt id %q: %w", id, err)
	}
	if date != "" {
		if r.Date, err = entity.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan receipt %s date: %w", id, err)
		}
	}
	if r.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("scan receipt %s amount: %w", id, err)
	}
	if r.UploadDate, err = time.Parse(uploadLayout, upload); err != nil {
		return nil, fmt.Errorf("scan receipt %s upload date: %w", id, err)
	}
	r.Category = constants.Category(category)
	r.Status = constants.Status(status)
	return &r, nil
}
