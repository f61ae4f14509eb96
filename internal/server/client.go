package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/query"
	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

// Client is a typed client for the Analytics service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) call(ctx context.Context, method string, req, reply any) error {
	in, err := encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return err
	}
	b, err := json.Marshal(out.AsMap())
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	if err := json.Unmarshal(b, reply); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	return nil
}

func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*ExtractReply, error) {
	var reply ExtractReply
	if err := c.call(ctx, MethodExtract, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var rec entity.Receipt
	if err := c.call(ctx, MethodGet, idRequest{ID: id.String()}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Query(ctx context.Context, f query.FilterSpec, sortBy query.SortSpec) ([]*entity.Receipt, error) {
	var reply QueryReply
	if err := c.call(ctx, MethodQuery, query.Document{Filter: f, Sort: &sortBy}, &reply); err != nil {
		return nil, err
	}
	return reply.Receipts, nil
}

func (c *Client) Stats(ctx context.Context, f query.FilterSpec) (stats.Report, error) {
	var report stats.Report
	err := c.call(ctx, MethodStats, query.Document{Filter: f}, &report)
	return report, err
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, upd entity.ReceiptUpdate) (*entity.Receipt, error) {
	var rec entity.Receipt
	if err := c.call(ctx, MethodUpdate, UpdateRequest{ID: id.String(), Update: upd}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	var reply map[string]any
	return c.call(ctx, MethodDelete, idRequest{ID: id.String()}, &reply)
}
