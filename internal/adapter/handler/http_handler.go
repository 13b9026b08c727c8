package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
	"github.com/rl1809/warehouse-ledger/internal/core/service"
)

type HTTPHandler struct {
	inventory *service.InventoryService
	logger    *zap.Logger
}

type LocationSummaryResponse struct {
	ID           int64   `json:"id"`
	Type         string  `json:"type"`
	Address      string  `json:"address"`
	Capacity     float64 `json:"capacity"`
	FreeVolume   float64 `json:"free_volume"`
	UsedVolume   float64 `json:"used_volume"`
	ProductKinds int     `json:"product_kinds"`
	StockValue   string  `json:"stock_value"`
}

type LineResponse struct {
	ProductID     int64   `json:"product_id"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	UnitVolume    float64 `json:"unit_volume"`
	UnitPrice     string  `json:"unit_price"`
	ShelfLifeDays int     `json:"shelf_life_days"`
	TotalVolume   float64 `json:"total_volume"`
	TotalCost     string  `json:"total_cost"`
}

type LocationDetailResponse struct {
	LocationSummaryResponse
	Lines []LineResponse `json:"lines"`
}

type UpdateLocationRequest struct {
	Type     string  `json:"type"`
	Capacity float64 `json:"capacity"`
	Address  string  `json:"address"`
}

type SupplyItemRequest struct {
	ProductID     int64           `json:"product_id"`
	SupplierID    int64           `json:"supplier_id"`
	Name          string          `json:"name"`
	UnitVolume    float64         `json:"unit_volume"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ShelfLifeDays int             `json:"shelf_life_days"`
	Quantity      int             `json:"quantity"`
}

type SupplyRequest struct {
	RequestID string              `json:"request_id"`
	Items     []SupplyItemRequest `json:"items"`
}

type SupplyResponse struct {
	RequestID   string `json:"request_id"`
	FullyPlaced bool   `json:"fully_placed"`
}

type TransferRequest struct {
	SourceID      int64   `json:"source_id"`
	DestinationID int64   `json:"destination_id"`
	ProductIDs    []int64 `json:"product_ids"`
	Quantities    []int   `json:"quantities"`
}

type TransferResponse struct {
	Committed bool `json:"committed"`
}

type ReportResponse struct {
	LocationID               int64   `json:"location_id"`
	Type                     string  `json:"type"`
	UsedVolume               float64 `json:"used_volume"`
	FreeVolume               float64 `json:"free_volume"`
	HasIssues                bool    `json:"has_issues"`
	NeedsExpiredRemoval      bool    `json:"needs_expired_removal"`
	NeedsTypeCorrection      bool    `json:"needs_type_correction"`
	NeedsSortingOptimization bool    `json:"needs_sorting_optimization"`
	Comment                  string  `json:"comment"`
}

type SweepResponse struct {
	LinesExamined int `json:"lines_examined"`
	Moved         int `json:"moved"`
	Stranded      int `json:"stranded"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(inventory *service.InventoryService, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{inventory: inventory, logger: logger}
}

// Routes registers every endpoint on a new mux.
func (h *HTTPHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /api/locations", h.ListLocations)
	mux.HandleFunc("GET /api/locations/{id}", h.GetLocation)
	mux.HandleFunc("PUT /api/locations/{id}", h.UpdateLocation)
	mux.HandleFunc("POST /api/supplies", h.SubmitSupply)
	mux.HandleFunc("POST /api/transfers", h.SubmitTransfer)
	mux.HandleFunc("GET /api/diagnostics", h.Analyze)
	mux.HandleFunc("GET /api/audit", h.AuditTrail)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)
	mux.HandleFunc("POST /api/sweeps/redistribute", h.Redistribute)
	mux.HandleFunc("POST /api/sweeps/disposal", h.Dispose)
	return mux
}

func (h *HTTPHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	summaries := h.inventory.ListLocations()
	out := make([]LocationSummaryResponse, len(summaries))
	for i, s := range summaries {
		out[i] = toSummaryResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	summary, lines, err := h.inventory.GetLocation(domain.LocationID(id))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LocationDetailResponse{
		LocationSummaryResponse: toSummaryResponse(summary),
		Lines:                   toLineResponses(lines),
	})
}

func (h *HTTPHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	typ, err := domain.ParseLocationType(req.Type)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.inventory.UpdateLocation(domain.LocationID(id), typ, req.Capacity, req.Address); err != nil {
		h.writeError(w, err)
		return
	}
	summary, _, _ := h.inventory.GetLocation(domain.LocationID(id))
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *HTTPHandler) SubmitSupply(w http.ResponseWriter, r *http.Request) {
	var req SupplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.inventory.SubmitSupply(r.Context(), req.RequestID, req.supplyItems())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SupplyResponse{RequestID: res.RequestID, FullyPlaced: res.FullyPlaced})
}

func (h *HTTPHandler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	committed, err := h.inventory.SubmitTransfer(
		domain.LocationID(req.SourceID), domain.LocationID(req.DestinationID), req.productIDs(), req.Quantities)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TransferResponse{Committed: committed})
}

func (h *HTTPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	reports := h.inventory.Analyze()
	out := make([]ReportResponse, len(reports))
	for i, rep := range reports {
		out[i] = toReportResponse(rep)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inventory.AuditTrail())
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.inventory.DeleteProduct(domain.ProductID(id)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Redistribute(w http.ResponseWriter, r *http.Request) {
	report, err := h.inventory.RedistributeSorting()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSweepResponse(report))
}

func (h *HTTPHandler) Dispose(w http.ResponseWriter, r *http.Request) {
	report, err := h.inventory.DisposeExpired()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSweepResponse(report))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrDuplicateRequest):
		status = http.StatusConflict
		message = "duplicate request"
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrFailedPrecondition):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	default:
		h.logger.Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (r SupplyRequest) supplyItems() []service.SupplyItem {
	items := make([]service.SupplyItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = service.SupplyItem{
			ProductID:     domain.ProductID(it.ProductID),
			SupplierID:    it.SupplierID,
			Name:          it.Name,
			UnitVolume:    it.UnitVolume,
			UnitPrice:     it.UnitPrice,
			ShelfLifeDays: it.ShelfLifeDays,
			Quantity:      it.Quantity,
		}
	}
	return items
}

func (r TransferRequest) productIDs() []domain.ProductID {
	ids := make([]domain.ProductID, len(r.ProductIDs))
	for i, id := range r.ProductIDs {
		ids[i] = domain.ProductID(id)
	}
	return ids
}

func toLineResponses(lines []domain.Line) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, line := range lines {
		out[i] = LineResponse{
			ProductID:     int64(line.Product.ID),
			Name:          line.Product.Name,
			Quantity:      line.Quantity,
			UnitVolume:    line.Product.UnitVolume,
			UnitPrice:     line.Product.UnitPrice.String(),
			ShelfLifeDays: line.Product.ShelfLifeDays,
			TotalVolume:   line.TotalVolume(),
			TotalCost:     line.TotalCost().String(),
		}
	}
	return out
}

func toSummaryResponse(s domain.LocationSummary) LocationSummaryResponse {
	return LocationSummaryResponse{
		ID:           int64(s.ID),
		Type:         s.Type.String(),
		Address:      s.Address,
		Capacity:     s.Capacity,
		FreeVolume:   s.FreeVolume,
		UsedVolume:   s.UsedVolume,
		ProductKinds: s.ProductKinds,
		StockValue:   s.StockValue.String(),
	}
}

func toReportResponse(r service.LocationReport) ReportResponse {
	return ReportResponse{
		LocationID:               int64(r.LocationID),
		Type:                     r.Type.String(),
		UsedVolume:               r.UsedVolume,
		FreeVolume:               r.FreeVolume,
		HasIssues:                r.HasIssues,
		NeedsExpiredRemoval:      r.NeedsExpiredRemoval,
		NeedsTypeCorrection:      r.NeedsTypeCorrection,
		NeedsSortingOptimization: r.NeedsSortingOptimization,
		Comment:                  r.Comment,
	}
}

func toSweepResponse(r service.SweepReport) SweepResponse {
	return SweepResponse{LinesExamined: r.LinesExamined, Moved: r.Moved, Stranded: r.Stranded}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
