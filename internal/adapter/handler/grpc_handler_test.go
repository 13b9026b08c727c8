package handler

import (
	"context"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newTestClient(t *testing.T, withDisposal bool) *LedgerClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterLedgerServer(srv, NewGRPCHandler(newTestInventory(t, withDisposal), zaptest.NewLogger(t)))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewLedgerClient(conn)
}

func grpcSupply(requestID string, quantity int) *SupplyRequest {
	return &SupplyRequest{
		RequestID: requestID,
		Items: []SupplyItemRequest{{
			ProductID:     3,
			SupplierID:    2,
			Name:          "yogurt",
			UnitVolume:    1.5,
			UnitPrice:     decimal.NewFromInt(4),
			ShelfLifeDays: 10,
			Quantity:      quantity,
		}},
	}
}

func TestGRPC_SupplyAndInspect(t *testing.T) {
	client := newTestClient(t, true)
	ctx := context.Background()

	res, err := client.SubmitSupply(ctx, grpcSupply("g-1", 6))
	if err != nil {
		t.Fatalf("submit supply: %v", err)
	}
	if !res.FullyPlaced {
		t.Fatal("expected supply to be fully placed")
	}

	list, err := client.ListLocations(ctx, &ListLocationsRequest{})
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(list.Locations) != 4 {
		t.Fatalf("expected 4 locations, got %d", len(list.Locations))
	}

	cold, err := client.GetLocation(ctx, &GetLocationRequest{ID: 2})
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if len(cold.Lines) != 1 || cold.Lines[0].Quantity != 6 {
		t.Fatalf("expected 6 units in cold storage, got %+v", cold.Lines)
	}
	if cold.StockValue != "24" {
		t.Errorf("expected stock value 24, got %s", cold.StockValue)
	}

	moved, err := client.SubmitTransfer(ctx, &TransferRequest{
		SourceID: 2, DestinationID: 3, ProductIDs: []int64{3}, Quantities: []int{2},
	})
	if err != nil {
		t.Fatalf("submit transfer: %v", err)
	}
	if !moved.Committed {
		t.Error("expected transfer to commit")
	}

	trail, err := client.AuditTrail(ctx, &AuditTrailRequest{})
	if err != nil {
		t.Fatalf("audit trail: %v", err)
	}
	if len(trail.Entries) != 2 {
		t.Errorf("expected 2 audit entries, got %d", len(trail.Entries))
	}

	analysis, err := client.Analyze(ctx, &AnalyzeRequest{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	sorting := analysis.Reports[2]
	if !sorting.NeedsSortingOptimization {
		t.Errorf("expected sorting location to need redistribution, got %+v", sorting)
	}
}

func TestGRPC_ErrorCodes(t *testing.T) {
	client := newTestClient(t, true)
	ctx := context.Background()

	_, err := client.GetLocation(ctx, &GetLocationRequest{ID: 99})
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}

	_, err = client.SubmitSupply(ctx, grpcSupply("g-dup", 0))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}

	if _, err := client.SubmitSupply(ctx, grpcSupply("g-dup", 1)); err != nil {
		t.Fatalf("supply after released key: %v", err)
	}
	_, err = client.SubmitSupply(ctx, grpcSupply("g-dup", 1))
	if status.Code(err) != codes.AlreadyExists {
		t.Errorf("expected AlreadyExists, got %v", err)
	}

	_, err = client.SubmitTransfer(ctx, &TransferRequest{
		SourceID: 1, DestinationID: 2, ProductIDs: []int64{3}, Quantities: []int{1, 1},
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}
