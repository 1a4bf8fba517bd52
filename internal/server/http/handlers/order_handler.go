package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/ecutune/ecutune/internal/pkg/auth"
	"github.com/ecutune/ecutune/internal/server/http/dto"
	"github.com/ecutune/ecutune/internal/server/http/middleware"
	"github.com/ecutune/ecutune/internal/usecase"
)

// OrderHandler manages the customer order endpoints.
type OrderHandler struct {
	facade   OrderFacade
	strategy pkgAuth.Strategy
}

// NewOrderHandler constructs OrderHandler. The strategy may be nil.
func NewOrderHandler(facade OrderFacade, strategy pkgAuth.Strategy) *OrderHandler {
	return &OrderHandler{facade: facade, strategy: strategy}
}

// Submit handles POST /api/orders. The order arrives as a multipart form
// with the firmware dump in the "file" field. Submission is open: the
// customer identifies with the email field, and when tokens are enabled the
// response sets one for the follow-up requests.
func (h *OrderHandler) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	values := url.Values(c.Request.MultipartForm.Value)

	owner := CurrentIdentity(c)
	if owner == "" {
		owner = strings.TrimSpace(values.Get("email"))
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	defer file.Close()

	order, err := h.facade.SubmitOrder(c.Request.Context(), usecase.CreateOrderParams{
		Owner:    owner,
		Vehicle:  dto.VehicleFromForm(values),
		Options:  dto.OptionsFromForm(values),
		Comments: strings.TrimSpace(values.Get("comments")),
	}, header.Filename, file)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	if h.strategy != nil {
		if token, err := h.strategy.IssueToken(owner); err == nil {
			middleware.SetIdentityCookie(c, token)
		}
	}

	c.JSON(http.StatusCreated, dto.FromOrder(*order, false))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.FromOrder(o, false))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), CurrentIdentity(c), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order, false))
}

// ConfirmDelivery handles POST /api/orders/:id/delivered.
func (h *OrderHandler) ConfirmDelivery(c *gin.Context) {
	order, err := h.facade.ConfirmDelivery(c.Request.Context(), c.Param("id"), CurrentIdentity(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order, false))
}

// Rate handles POST /api/orders/:id/rating.
func (h *OrderHandler) Rate(c *gin.Context) {
	var req dto.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.RateOrder(c.Request.Context(), c.Param("id"), CurrentIdentity(c), req.Rating, req.Feedback)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order, false))
}
