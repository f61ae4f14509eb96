package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/extract"
	"github.com/joseph-ayodele/receipt-analytics/internal/query"
	"github.com/joseph-ayodele/receipt-analytics/internal/receipts"
	"github.com/joseph-ayodele/receipt-analytics/internal/repository"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := extract.NewEngine(extract.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	tick := fixedNow
	svc := receipts.NewService(repository.NewMemoryStore(), engine,
		receipts.WithLogger(logger),
		receipts.WithClock(func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		}))

	lis := bufconn.Listen(1 << 20)
	s, _ := New(NewAnalytics(svc, logger), logger)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func extractReq(vendor, date, amount string) ExtractRequest {
	return ExtractRequest{
		FileName: strings.ToLower(vendor) + ".txt",
		Text:     fmt.Sprintf("%s\n%s\nTOTAL $%s", strings.ToUpper(vendor), date, amount),
	}
}

func seed(t *testing.T, c *Client) []*entity.Receipt {
	t.Helper()
	reqs := []ExtractRequest{
		extractReq("Walmart", "01/15/2024", "127.45"),
		extractReq("Shell", "01/20/2024", "89.99"),
		extractReq("Comcast", "02/01/2024", "79.99"),
		extractReq("Starbucks", "02/14/2024", "12.75"),
		extractReq("PowerCorp", "03/01/2024", "65.20"),
		extractReq("CVS", "03/09/2024", "45.99"),
	}
	out := make([]*entity.Receipt, 0, len(reqs))
	for _, r := range reqs {
		reply, err := c.Extract(context.Background(), r)
		require.NoError(t, err)
		out = append(out, reply.Receipt)
	}
	return out
}

func TestAnalytics_Extract(t *testing.T) {
	c := NewClient(startServer(t))

	reply, err := c.Extract(context.Background(), extractReq("Walmart", "03/15/2024", "127.45"))
	require.NoError(t, err)
	require.NotNil(t, reply.Receipt)
	assert.Equal(t, "Walmart", reply.Receipt.Vendor)
	assert.Equal(t, constants.Groceries, reply.Receipt.Category)
	assert.Equal(t, "2024-03-15", reply.Receipt.Date.String())
	assert.True(t, reply.Receipt.Amount.Equal(decimal.RequireFromString("127.45")))
	assert.Equal(t, constants.StatusProcessed, reply.Receipt.Status)
	assert.InDelta(t, 1.0, reply.Confidence, 1e-9)
	assert.Empty(t, reply.Failures)
	assert.Empty(t, reply.Warning)

	got, err := c.Get(context.Background(), reply.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, reply.Receipt.ID, got.ID)
}

func TestAnalytics_ExtractEmptyText(t *testing.T) {
	c := NewClient(startServer(t))

	reply, err := c.Extract(context.Background(), ExtractRequest{FileName: "blank.txt", Size: 1})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusError, reply.Receipt.Status)
	assert.NotEmpty(t, reply.Warning)
	assert.NotEmpty(t, reply.Failures)
}

func TestAnalytics_ExtractRejectsUnsupportedType(t *testing.T) {
	c := NewClient(startServer(t))

	_, err := c.Extract(context.Background(), ExtractRequest{FileName: "receipt.heic", Text: "walmart"})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAnalytics_QueryAndStats(t *testing.T) {
	c := NewClient(startServer(t))
	seed(t, c)
	ctx := context.Background()

	all, err := c.Query(ctx, query.FilterSpec{}, query.SortSpec{Field: query.SortByAmount, Direction: query.Desc})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "Walmart", all[0].Vendor)
	assert.Equal(t, "Starbucks", all[5].Vendor)

	floor := decimal.NewFromInt(80)
	big, err := c.Query(ctx, query.FilterSpec{AmountMin: &floor}, query.DefaultSort)
	require.NoError(t, err)
	require.Len(t, big, 2)

	report, err := c.Stats(ctx, query.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 6, report.TotalReceipts)
	assert.True(t, report.TotalSpend.Equal(decimal.RequireFromString("421.37")), report.TotalSpend.String())
	assert.True(t, report.MedianAmount.Equal(decimal.RequireFromString("72.595")))
	require.Len(t, report.MonthlySpending, 3)
	assert.Equal(t, "2024-01", report.MonthlySpending[0].Key)
}

func TestAnalytics_QueryRejectsBadDocument(t *testing.T) {
	conn := startServer(t)

	in, err := structpb.NewStruct(map[string]any{"sort": map[string]any{"field": "colour"}})
	require.NoError(t, err)
	err = conn.Invoke(context.Background(), MethodQuery, in, new(structpb.Struct))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAnalytics_UpdateAndDelete(t *testing.T) {
	c := NewClient(startServer(t))
	recs := seed(t, c)
	ctx := context.Background()

	vendor := "Walmart Supercenter"
	amount := decimal.RequireFromString("130.00")
	updated, err := c.Update(ctx, recs[0].ID, entity.ReceiptUpdate{Vendor: &vendor, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, vendor, updated.Vendor)
	assert.True(t, updated.Amount.Equal(amount))

	report, err := c.Stats(ctx, query.FilterSpec{})
	require.NoError(t, err)
	assert.True(t, report.TotalSpend.Equal(decimal.RequireFromString("423.92")), report.TotalSpend.String())

	_, err = c.Update(ctx, recs[0].ID, entity.ReceiptUpdate{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	require.NoError(t, c.Delete(ctx, recs[0].ID))
	_, err = c.Get(ctx, recs[0].ID)
	assert.Equal(t, codes.NotFound, status.Code(err))
	err = c.Delete(ctx, recs[0].ID)
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = c.Update(ctx, uuid.New(), entity.ReceiptUpdate{Vendor: &vendor})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestAnalytics_BadID(t *testing.T) {
	conn := startServer(t)

	for _, id := range []any{"", "not-a-uuid"} {
		in, err := structpb.NewStruct(map[string]any{"id": id})
		require.NoError(t, err)
		err = conn.Invoke(context.Background(), MethodGet, in, new(structpb.Struct))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "id %q", id)
	}
}

func TestHealth(t *testing.T) {
	conn := startServer(t)

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}
