package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	connusecases "github.com/mataroo/mataroo/internal/application/connection/usecases"
	paydto "github.com/mataroo/mataroo/internal/application/payment/dto"
	subusecases "github.com/mataroo/mataroo/internal/application/subscription/usecases"
	"github.com/mataroo/mataroo/internal/shared/logger"
	"github.com/mataroo/mataroo/internal/shared/utils"
)

// DashboardHandler serves the subscription, connections and upgrade cards.
type DashboardHandler struct {
	getUsageUC        getUsageUseCase
	listConnectionsUC listConnectionsUseCase
	connectUC         connectUseCase
	disconnectUC      disconnectUseCase
	upgrade           upgradeFlow
	checkoutURL       func(orderID string) string
	logger            logger.Interface
}

func NewDashboardHandler(
	getUsageUC getUsageUseCase,
	listConnectionsUC listConnectionsUseCase,
	connectUC connectUseCase,
	disconnectUC disconnectUseCase,
	upgrade upgradeFlow,
	checkoutURL func(orderID string) string,
	logger logger.Interface,
) *DashboardHandler {
	return &DashboardHandler{
		getUsageUC:        getUsageUC,
		listConnectionsUC: listConnectionsUC,
		connectUC:         connectUC,
		disconnectUC:      disconnectUC,
		upgrade:           upgrade,
		checkoutURL:       checkoutURL,
		logger:            logger,
	}
}

// UpgradeResponse is the current attempt plus the page that hosts the widget.
type UpgradeResponse struct {
	*paydto.AttemptDTO
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// freshParam reads ?fresh=true, which bypasses the staleness window.
func freshParam(c *gin.Context) bool {
	fresh, _ := strconv.ParseBool(c.Query("fresh"))
	return fresh
}

// GetSubscription handles GET /dashboard/subscription
func (h *DashboardHandler) GetSubscription(c *gin.Context) {
	usage, err := h.getUsageUC.Execute(c.Request.Context(), subusecases.GetUsageQuery{Fresh: freshParam(c)})
	if err != nil {
		h.logger.Warnw("failed to load subscription", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", usage)
}

// ListConnections handles GET /dashboard/connections
func (h *DashboardHandler) ListConnections(c *gin.Context) {
	result, err := h.listConnectionsUC.Execute(c.Request.Context(), connusecases.ListConnectionsQuery{Fresh: freshParam(c)})
	if err != nil {
		h.logger.Warnw("failed to load connections", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Connect handles POST /dashboard/connections/:platform/connect
func (h *DashboardHandler) Connect(c *gin.Context) {
	result, err := h.connectUC.Execute(c.Request.Context(), connusecases.ConnectCommand{Platform: c.Param("platform")})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Disconnect handles DELETE /dashboard/connections/:platform
func (h *DashboardHandler) Disconnect(c *gin.Context) {
	result, err := h.disconnectUC.Execute(c.Request.Context(), connusecases.DisconnectCommand{Platform: c.Param("platform")})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, result.Message, result)
}

// StartUpgrade handles POST /dashboard/upgrade
func (h *DashboardHandler) StartUpgrade(c *gin.Context) {
	attempt, err := h.upgrade.Start(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Checkout opened", h.upgradeResponse(attempt))
}

// GetUpgrade handles GET /dashboard/upgrade
func (h *DashboardHandler) GetUpgrade(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.upgradeResponse(h.upgrade.Current()))
}

func (h *DashboardHandler) upgradeResponse(a *paydto.AttemptDTO) UpgradeResponse {
	resp := UpgradeResponse{AttemptDTO: a}
	if a != nil && a.State == "widget_open" && a.OrderID != "" {
		resp.CheckoutURL = h.checkoutURL(a.OrderID)
	}
	return resp
}
