package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/extract"
	"github.com/joseph-ayodele/receipt-analytics/internal/query"
	"github.com/joseph-ayodele/receipt-analytics/internal/receipts"
)

// ExtractRequest is the JSON form of an Extract call. Path names a file readable by
// the daemon; otherwise Text carries already-acquired document text.
type ExtractRequest struct {
	FileName    string `json:"fileName,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Path        string `json:"path,omitempty"`
	Text        string `json:"text,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractReply reports the stored record and how the extraction went.
type ExtractReply struct {
	Receipt    *entity.Receipt `json:"receipt"`
	Confidence float64         `json:"confidence"`
	Failures   []FailureReply  `json:"failures"`
	Warning    string          `json:"warning,omitempty"`
}

// NewExtractReply flattens an ingest outcome into its wire form.
func NewExtractReply(rec *entity.Receipt, res extract.Result) ExtractReply {
	reply := ExtractReply{Receipt: rec, Confidence: res.Confidence, Failures: make([]FailureReply, 0, len(res.Failures))}
	for _, f := range res.Failures {
		reply.Failures = append(reply.Failures, FailureReply{Field: f.Field, Reason: f.Reason})
	}
	if res.Warning != nil {
		reply.Warning = res.Warning.Error()
	}
	return reply
}

type FailureReply struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// QueryReply is the result of Query.
type QueryReply struct {
	Count    int               `json:"count"`
	Receipts []*entity.Receipt `json:"receipts"`
}

// UpdateRequest carries the target id and the partial overwrite.
type UpdateRequest struct {
	ID     string               `json:"id"`
	Update entity.ReceiptUpdate `json:"update"`
}

type idRequest struct {
	ID string `json:"id"`
}

// Analytics serves the receipt service over gRPC.
type Analytics struct {
	UnimplementedAnalyticsServer
	svc    *receipts.Service
	logger *slog.Logger
}

func NewAnalytics(svc *receipts.Service, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{svc: svc, logger: logger}
}

func (a *Analytics) Extract(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFrom(ctx, a.logger)
	var req ExtractRequest
	if err := decode(in, &req); err != nil {
		return nil, common.ToStatus(err)
	}
	if strings.TrimSpace(req.Path) == "" && req.Size == 0 {
		req.Size = int64(len(req.Text))
	}

	logger.Info("extracting receipt", "file_name", req.FileName, "path", req.Path)
	rec, res, err := a.svc.Ingest(ctx, receipts.Document{
		FileName:    req.FileName,
		Size:        req.Size,
		Path:        req.Path,
		Text:        req.Text,
		Description: req.Description,
	})
	if err != nil {
		logger.Error("extract failed", "file_name", req.FileName, "error", err)
		return nil, common.ToStatus(err)
	}

	logger.Info("receipt extracted", "id", rec.ID, "status", rec.Status, "confidence", res.Confidence)
	return encode(NewExtractReply(rec, res))
}

func (a *Analytics) Get(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := a.idFrom(in)
	if err != nil {
		return nil, err
	}
	rec, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return encode(rec)
}

// Query takes a query document {"filter": {...}, "sort": {...}}.
func (a *Analytics) Query(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFrom(ctx, a.logger)
	raw, err := rawJSON(in)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	f, sortBy, err := query.Decode(raw)
	if err != nil {
		logger.Warn("invalid query", "error", err)
		return nil, common.ToStatus(err)
	}

	recs, err := a.svc.Query(ctx, f, sortBy)
	if err != nil {
		logger.Error("query failed", "error", err)
		return nil, common.ToStatus(err)
	}
	logger.Debug("query served", "count", len(recs), "sort", sortBy.String())
	return encode(QueryReply{Count: len(recs), Receipts: recs})
}

// Stats takes a query document; only its filter is used.
func (a *Analytics) Stats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	raw, err := rawJSON(in)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	f, _, err := query.Decode(raw)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	report, err := a.svc.Stats(ctx, f)
	if err != nil {
		common.LoggerFrom(ctx, a.logger).Error("stats failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return encode(report)
}

func (a *Analytics) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFrom(ctx, a.logger)
	var req UpdateRequest
	if err := decode(in, &req); err != nil {
		return nil, common.ToStatus(err)
	}
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	rec, err := a.svc.Update(ctx, id, req.Update)
	if err != nil {
		logger.Error("update failed", "id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	logger.Info("receipt updated", "id", id)
	return encode(rec)
}

func (a *Analytics) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := a.idFrom(in)
	if err != nil {
		return nil, err
	}
	if err := a.svc.Delete(ctx, id); err != nil {
		return nil, common.ToStatus(err)
	}
	common.LoggerFrom(ctx, a.logger).Info("receipt deleted", "id", id)
	return encode(map[string]any{"id": id.String(), "deleted": true})
}

func (a *Analytics) idFrom(in *structpb.Struct) (uuid.UUID, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return uuid.Nil, common.ToStatus(err)
	}
	return parseID(req.ID)
}

func parseID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	v := common.NewValidator().Field("id", raw, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(raw), nil
}
