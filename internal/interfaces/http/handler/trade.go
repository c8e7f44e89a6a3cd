package handler

import (
	apptrade "github.com/erp/ledger/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SalesHandler records, edits and deletes sales
type SalesHandler struct {
	BaseHandler
	svc *apptrade.SalesService
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(svc *apptrade.SalesService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// Create records a sale
// POST /sales
func (h *SalesHandler) Create(c *gin.Context) {
	var req apptrade.SaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a sale
// GET /sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update replaces a sale's lines and reallocates them
// PUT /sales/:id
func (h *SalesHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req apptrade.SaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSale(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete returns a sale's stock and removes it
// DELETE /sales/:id
func (h *SalesHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(c.Request.Context(), actor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PurchaseHandler records, edits and deletes supplier deliveries
type PurchaseHandler struct {
	BaseHandler
	svc *apptrade.PurchasingService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(svc *apptrade.PurchasingService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// Create receives a purchase
// POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req apptrade.PurchaseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.ReceivePurchase(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a purchase
// GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetPurchase(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update replaces a purchase while none of its batches has been sold from
// PUT /purchases/:id
func (h *PurchaseHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req apptrade.PurchaseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePurchase(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete takes a purchase's stock back out and removes it
// DELETE /purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeletePurchase(c.Request.Context(), actor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
