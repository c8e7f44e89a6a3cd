package handler

import (
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler exposes batches, stock levels and the movement ledger
type LedgerHandler struct {
	BaseHandler
	svc *appinv.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(svc *appinv.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// CreateBatch registers a batch without receiving stock
// POST /batches
func (h *LedgerHandler) CreateBatch(c *gin.Context) {
	var req appinv.CreateBatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.CreateBatch(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RenameBatch corrects a batch label
// PATCH /batches/:id
func (h *LedgerHandler) RenameBatch(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appinv.RenameBatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.RenameBatch(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetStock returns a batch with its on-hand quantity per location, or at the
// single location named by ?location=
// GET /batches/:id/stock
func (h *LedgerHandler) GetStock(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var (
		resp *appinv.BatchStockResponse
		err  error
	)
	if location, scoped := c.GetQuery("location"); scoped {
		resp, err = h.svc.GetOnHandAt(c.Request.Context(), id, location)
	} else {
		resp, err = h.svc.GetOnHand(c.Request.Context(), id)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReconcileResponse reports the outcome of a batch consistency check
type ReconcileResponse struct {
	BatchID       uuid.UUID            `json:"batch_id"`
	Consistent    bool                 `json:"consistent"`
	Discrepancies []appinv.Discrepancy `json:"discrepancies"`
}

// Reconcile compares a batch's on-hand rows with its movement history
// GET /batches/:id/reconcile
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	found, err := h.svc.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if found == nil {
		found = []appinv.Discrepancy{}
	}
	h.Success(c, ReconcileResponse{BatchID: id, Consistent: len(found) == 0, Discrepancies: found})
}

// Receive creates a batch and takes its quantity into stock
// POST /inventory/receive
func (h *LedgerHandler) Receive(c *gin.Context) {
	var req appinv.ReceiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Receive(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Adjust applies a manual stock correction
// POST /inventory/adjust
func (h *LedgerHandler) Adjust(c *gin.Context) {
	var req appinv.AdjustRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Allocate draws stock earliest expiry first
// POST /inventory/allocate
func (h *LedgerHandler) Allocate(c *gin.Context) {
	var req appinv.AllocateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Allocate(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type movementQuery struct {
	Type      string `form:"type" binding:"omitempty,oneof=IN OUT ADJUSTMENT RETURN"`
	BatchID   string `form:"batch_id" binding:"omitempty,uuid"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Location  string `form:"location" binding:"max=100"`
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListMovements returns a filtered page of the ledger, newest first
// GET /inventory/movements
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	var q movementQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindFailed(c, err)
		return
	}
	filter := appinv.MovementListFilter{
		Type:     q.Type,
		Location: q.Location,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.BatchID != "" {
		id := uuid.MustParse(q.BatchID)
		filter.BatchID = &id
	}
	if q.ProductID != "" {
		id := uuid.MustParse(q.ProductID)
		filter.ProductID = &id
	}
	var ok bool
	if filter.From, ok = h.parseTime(c, "from", q.From); !ok {
		return
	}
	if filter.To, ok = h.parseTime(c, "to", q.To); !ok {
		return
	}

	items, total, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defaults := shared.DefaultFilter()
	page, pageSize := q.Page, q.PageSize
	if page == 0 {
		page = defaults.Page
	}
	if pageSize == 0 {
		pageSize = defaults.PageSize
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

func (h *LedgerHandler) parseTime(c *gin.Context, name, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		h.BadRequest(c, "Query parameter "+name+" must be an RFC 3339 timestamp")
		return nil, false
	}
	return &t, true
}
