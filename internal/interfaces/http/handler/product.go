package handler

import (
	appcatalog "github.com/erp/ledger/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler registers products by SKU
type ProductHandler struct {
	BaseHandler
	svc *appcatalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(svc *appcatalog.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Register creates or renames the product behind a SKU
// PUT /products/by-sku/:sku
func (h *ProductHandler) Register(c *gin.Context) {
	var req appcatalog.RegisterProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), actor(c), c.Param("sku"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns a product
// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
