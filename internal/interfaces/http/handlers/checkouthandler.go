package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mataroo/mataroo/internal/infrastructure/checkout"
	"github.com/mataroo/mataroo/internal/shared/errors"
	"github.com/mataroo/mataroo/internal/shared/logger"
	"github.com/mataroo/mataroo/internal/shared/utils"
)

// CheckoutHandler hosts the gateway widget page and receives its events.
type CheckoutHandler struct {
	page   checkoutPage
	logger logger.Interface
}

func NewCheckoutHandler(page checkoutPage, logger logger.Interface) *CheckoutHandler {
	return &CheckoutHandler{page: page, logger: logger}
}

// Page handles GET /checkout/:order_id
func (h *CheckoutHandler) Page(c *gin.Context) {
	body, err := h.page.RenderPage(c.Param("order_id"))
	if err != nil {
		utils.ErrorResponseWithError(c, checkoutError(err))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// Complete handles POST /checkout/:order_id/complete
func (h *CheckoutHandler) Complete(c *gin.Context) {
	var resp checkout.Response
	if err := c.ShouldBindJSON(&resp); err != nil {
		h.logger.Warnw("invalid checkout completion payload", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid checkout response", err.Error()))
		return
	}

	if err := h.page.Complete(c.Request.Context(), c.Param("order_id"), resp); err != nil {
		utils.ErrorResponseWithError(c, checkoutError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment verified", nil)
}

// Failed handles POST /checkout/:order_id/failed
func (h *CheckoutHandler) Failed(c *gin.Context) {
	var failure checkout.Failure
	// the gateway's error object is informational only
	_ = c.ShouldBindJSON(&failure)

	err := h.page.Fail(c.Request.Context(), c.Param("order_id"), failure)
	utils.ErrorResponseWithError(c, checkoutError(err))
}

// Dismiss handles POST /checkout/:order_id/dismiss
func (h *CheckoutHandler) Dismiss(c *gin.Context) {
	if err := h.page.Dismiss(c.Request.Context(), c.Param("order_id")); err != nil {
		utils.ErrorResponseWithError(c, checkoutError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Checkout closed", nil)
}

func checkoutError(err error) error {
	switch {
	case err == nil:
		return errors.NewInternalError("Checkout reported no outcome")
	case stderrors.Is(err, checkout.ErrUnknownOrder):
		return errors.NewNotFoundError("No open checkout for this order")
	case stderrors.Is(err, checkout.ErrClosed):
		return errors.NewConflictError("Checkout is closed")
	default:
		return err
	}
}
