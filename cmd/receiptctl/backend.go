package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/joseph-ayodele/receipt-analytics/internal/app"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/query"
	"github.com/joseph-ayodele/receipt-analytics/internal/receipts"
	"github.com/joseph-ayodele/receipt-analytics/internal/server"
	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

// backend is what every command needs, served either in-process or by receiptsd.
type backend interface {
	Extract(ctx context.Context, req server.ExtractRequest) (*server.ExtractReply, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	Query(ctx context.Context, f query.FilterSpec, sortBy query.SortSpec) ([]*entity.Receipt, error)
	Stats(ctx context.Context, f query.FilterSpec) (stats.Report, error)
	Update(ctx context.Context, id uuid.UUID, upd entity.ReceiptUpdate) (*entity.Receipt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

func openBackend(ctx context.Context) (backend, error) {
	if addr := viper.GetString("server.addr"); addr != "" {
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		return remoteBackend{Client: server.NewClient(conn), conn: conn}, nil
	}
	a, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	return localBackend{app: a}, nil
}

func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, loadConfig(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return a, nil
}

type remoteBackend struct {
	*server.Client
	conn *grpc.ClientConn
}

func (r remoteBackend) Close() error { return r.conn.Close() }

type localBackend struct {
	app *app.App
}

func (l localBackend) Extract(ctx context.Context, req server.ExtractRequest) (*server.ExtractReply, error) {
	rec, res, err := l.app.Service.Ingest(ctx, receipts.Document{
		FileName:    req.FileName,
		Size:        req.Size,
		Path:        req.Path,
		Text:        req.Text,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	reply := server.NewExtractReply(rec, res)
	return &reply, nil
}

func (l localBackend) Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	return l.app.Service.Get(ctx, id)
}

func (l localBackend) Query(ctx context.Context, f query.FilterSpec, sortBy query.SortSpec) ([]*entity.Receipt, error) {
	return l.app.Service.Query(ctx, f, sortBy)
}

func (l localBackend) Stats(ctx context.Context, f query.FilterSpec) (stats.Report, error) {
	return l.app.Service.Stats(ctx, f)
}

func (l localBackend) Update(ctx context.Context, id uuid.UUID, upd entity.ReceiptUpdate) (*entity.Receipt, error) {
	return l.app.Service.Update(ctx, id, upd)
}

func (l localBackend) Delete(ctx context.Context, id uuid.UUID) error {
	return l.app.Service.Delete(ctx, id)
}

func (l localBackend) Close() error { return l.app.Close() }
