package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cerebra-app/checkout/internal/app/service/statistics"
	"github.com/cerebra-app/checkout/internal/app/service/transaction"
	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/internal/platform/whop"
	"github.com/cerebra-app/checkout/pkg/logctx"
	"github.com/cerebra-app/checkout/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type paymentStatusResponse struct {
	Transaction   *models.Transaction `json:"transaction"`
	SessionStatus string              `json:"session_status,omitempty"`
}

// @Summary      Payment status
// @Description  Debug view combining the local transaction with the provider's session status, when a provider session is attached.
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Transaction id"
// @Success      200  {object}  response.APIResponse[handlers.paymentStatusResponse]
// @Failure      404  {object}  response.APIResponse[string]
// @Router       /api/v1/admin/payment-status/{id} [get]
func ApiAdminPaymentStatus(log *zap.SugaredLogger, svc *transaction.Service, client *whop.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		txn, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, transaction.ErrTransactionNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT(response.APIResponseCodeNotFound, "Transaction not found"))
				return
			}
			logctx.FromGin(c, log).Errorw("payment_status_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to get payment status"))
			return
		}

		res := paymentStatusResponse{Transaction: txn}
		if txn.ProviderSessionID != "" {
			if st, err := client.GetSessionStatus(c.Request.Context(), txn.ProviderSessionID); err != nil {
				logctx.FromGin(c, log).Warnw("provider_status_lookup_failed", "err", err)
			} else {
				res.SessionStatus = st.Status
			}
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Scan transactions
// @Description  Paginated admin listing with free-form field filters.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body transaction.ScanRequest true "Filters and pagination"
// @Success      200  {object}  response.APIResponse[transaction.ScanResponse]
// @Router       /api/v1/admin/transactions/scan [post]
func ApiAdminScanTransactions(log *zap.SugaredLogger, svc *transaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transaction.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("transaction_scan_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to scan transactions"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Checkout statistics
// @Tags         Admin
// @Produce      json
// @Param        days query int false "Trailing window in days (default 30)"
// @Success      200  {object}  response.APIResponse[statistics.Overview]
// @Router       /api/v1/admin/statistics [get]
func ApiAdminStatistics(log *zap.SugaredLogger, svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		overview, err := svc.Overview(c.Request.Context(), days)
		if err != nil {
			logctx.FromGin(c, log).Errorw("statistics_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to compute statistics"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(overview))
	}
}

// @Summary      Test webhook
// @Description  Force-completes the most recent pending transaction. Development tooling; the webhook path is the real mutation source.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.Transaction]
// @Failure      404  {object}  response.APIResponse[string]
// @Router       /api/v1/admin/test-webhook [post]
func ApiAdminTestWebhook(log *zap.SugaredLogger, svc *transaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		txn, err := svc.CompleteMostRecentPending(c.Request.Context())
		if err != nil {
			if errors.Is(err, transaction.ErrTransactionNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT(response.APIResponseCodeNotFound, "No pending transaction to complete"))
				return
			}
			logctx.FromGin(c, log).Errorw("test_webhook_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to complete transaction"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(txn))
	}
}

func RegisterAdminRoutes(r gin.IRouter, log *zap.SugaredLogger, svc *transaction.Service, stats *statistics.Service, client *whop.Client) {
	r.GET("/payment-status/:id", ApiAdminPaymentStatus(log, svc, client))
	r.POST("/transactions/scan", ApiAdminScanTransactions(log, svc))
	r.GET("/statistics", ApiAdminStatistics(log, stats))
	r.POST("/test-webhook", ApiAdminTestWebhook(log, svc))
}
