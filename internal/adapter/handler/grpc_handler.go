package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
	"github.com/rl1809/warehouse-ledger/internal/core/service"
)

const LedgerServiceName = "warehouse.ledger.v1.Ledger"

type ListLocationsRequest struct{}

type ListLocationsResponse struct {
	Locations []LocationSummaryResponse `json:"locations"`
}

type GetLocationRequest struct {
	ID int64 `json:"id"`
}

type AnalyzeRequest struct{}

type AnalyzeResponse struct {
	Reports []ReportResponse `json:"reports"`
}

type AuditTrailRequest struct{}

type AuditTrailResponse struct {
	Entries []string `json:"entries"`
}

type LedgerServer interface {
	ListLocations(context.Context, *ListLocationsRequest) (*ListLocationsResponse, error)
	GetLocation(context.Context, *GetLocationRequest) (*LocationDetailResponse, error)
	SubmitSupply(context.Context, *SupplyRequest) (*SupplyResponse, error)
	SubmitTransfer(context.Context, *TransferRequest) (*TransferResponse, error)
	Analyze(context.Context, *AnalyzeRequest) (*AnalyzeResponse, error)
	AuditTrail(context.Context, *AuditTrailRequest) (*AuditTrailResponse, error)
}

type GRPCHandler struct {
	inventory *service.InventoryService
	logger    *zap.Logger
}

func NewGRPCHandler(inventory *service.InventoryService, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{inventory: inventory, logger: logger}
}

func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

func (h *GRPCHandler) ListLocations(ctx context.Context, req *ListLocationsRequest) (*ListLocationsResponse, error) {
	summaries := h.inventory.ListLocations()
	resp := &ListLocationsResponse{Locations: make([]LocationSummaryResponse, len(summaries))}
	for i, s := range summaries {
		resp.Locations[i] = toSummaryResponse(s)
	}
	return resp, nil
}

func (h *GRPCHandler) GetLocation(ctx context.Context, req *GetLocationRequest) (*LocationDetailResponse, error) {
	summary, lines, err := h.inventory.GetLocation(domain.LocationID(req.ID))
	if err != nil {
		return nil, h.statusError(err)
	}
	return &LocationDetailResponse{
		LocationSummaryResponse: toSummaryResponse(summary),
		Lines:                   toLineResponses(lines),
	}, nil
}

func (h *GRPCHandler) SubmitSupply(ctx context.Context, req *SupplyRequest) (*SupplyResponse, error) {
	res, err := h.inventory.SubmitSupply(ctx, req.RequestID, req.supplyItems())
	if err != nil {
		return nil, h.statusError(err)
	}
	return &SupplyResponse{RequestID: res.RequestID, FullyPlaced: res.FullyPlaced}, nil
}

func (h *GRPCHandler) SubmitTransfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
	committed, err := h.inventory.SubmitTransfer(
		domain.LocationID(req.SourceID), domain.LocationID(req.DestinationID), req.productIDs(), req.Quantities)
	if err != nil {
		return nil, h.statusError(err)
	}
	return &TransferResponse{Committed: committed}, nil
}

func (h *GRPCHandler) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	reports := h.inventory.Analyze()
	resp := &AnalyzeResponse{Reports: make([]ReportResponse, len(reports))}
	for i, r := range reports {
		resp.Reports[i] = toReportResponse(r)
	}
	return resp, nil
}

func (h *GRPCHandler) AuditTrail(ctx context.Context, req *AuditTrailRequest) (*AuditTrailResponse, error) {
	return &AuditTrailResponse{Entries: h.inventory.AuditTrail()}, nil
}

func (h *GRPCHandler) statusError(err error) error {
	switch {
	case errors.Is(err, service.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, "duplicate request")
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrFailedPrecondition):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	h.logger.Error("rpc failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

// LedgerServiceDesc describes the Ledger service for grpc.Server. Messages
// are the JSON request/response types above, carried by the json codec.
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: LedgerServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListLocations", LedgerServer.ListLocations),
		unaryMethod("GetLocation", LedgerServer.GetLocation),
		unaryMethod("SubmitSupply", LedgerServer.SubmitSupply),
		unaryMethod("SubmitTransfer", LedgerServer.SubmitTransfer),
		unaryMethod("Analyze", LedgerServer.Analyze),
		unaryMethod("AuditTrail", LedgerServer.AuditTrail),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger",
}

func unaryMethod[Req, Resp any](name string, call func(LedgerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + LedgerServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LedgerServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LedgerClient calls the Ledger service over the json codec.
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

func (c *LedgerClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+LedgerServiceName+"/"+method, in, out, opts...)
}

func (c *LedgerClient) ListLocations(ctx context.Context, in *ListLocationsRequest, opts ...grpc.CallOption) (*ListLocationsResponse, error) {
	out := new(ListLocationsResponse)
	if err := c.invoke(ctx, "ListLocations", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) GetLocation(ctx context.Context, in *GetLocationRequest, opts ...grpc.CallOption) (*LocationDetailResponse, error) {
	out := new(LocationDetailResponse)
	if err := c.invoke(ctx, "GetLocation", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) SubmitSupply(ctx context.Context, in *SupplyRequest, opts ...grpc.CallOption) (*SupplyResponse, error) {
	out := new(SupplyResponse)
	if err := c.invoke(ctx, "SubmitSupply", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) SubmitTransfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	out := new(TransferResponse)
	if err := c.invoke(ctx, "SubmitTransfer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) Analyze(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	out := new(AnalyzeResponse)
	if err := c.invoke(ctx, "Analyze", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) AuditTrail(ctx context.Context, in *AuditTrailRequest, opts ...grpc.CallOption) (*AuditTrailResponse, error) {
	out := new(AuditTrailResponse)
	if err := c.invoke(ctx, "AuditTrail", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
