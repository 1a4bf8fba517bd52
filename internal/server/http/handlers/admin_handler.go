package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecutune/ecutune/internal/server/http/dto"
)

// AdminHandler manages the administrative order endpoints. Authorization is
// enforced by middleware before these run.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// List handles GET /api/admin/orders.
func (h *AdminHandler) List(c *gin.Context) {
	orders, err := h.facade.AllOrders(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.FromOrder(o, true))
	}
	c.JSON(http.StatusOK, response)
}

// UploadResult handles POST /api/admin/orders/:id/result. The tuned file
// arrives as a multipart form in the "file" field.
func (h *AdminHandler) UploadResult(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	defer file.Close()

	order, err := h.facade.AttachResult(c.Request.Context(), c.Param("id"), header.Filename, file)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order, true))
}

// Reject handles POST /api/admin/orders/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	order, err := h.facade.RejectOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order, true))
}

// Delete handles DELETE /api/admin/orders/:id.
func (h *AdminHandler) Delete(c *gin.Context) {
	if _, err := h.facade.RemoveOrder(c.Request.Context(), c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
