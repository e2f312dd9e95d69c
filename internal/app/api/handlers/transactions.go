package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cerebra-app/checkout/internal/app/service/receipt"
	"github.com/cerebra-app/checkout/internal/app/service/transaction"
	"github.com/cerebra-app/checkout/pkg/logctx"
	"github.com/cerebra-app/checkout/pkg/response"
	"github.com/cerebra-app/checkout/pkg/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid transaction id"))
		return 0, false
	}
	return id, true
}

// @Summary      Get transaction
// @Tags         Transactions
// @Produce      json
// @Param        id path int true "Transaction id"
// @Success      200  {object}  response.APIResponse[models.Transaction]
// @Failure      404  {object}  response.APIResponse[string]
// @Router       /api/v1/transactions/{id} [get]
func ApiGetTransaction(log *zap.SugaredLogger, svc *transaction.Service) gin.HandlerFunc {
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
			logctx.FromGin(c, log).Errorw("transaction_get_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to get transaction"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(txn))
	}
}

// @Summary      List transactions
// @Tags         Transactions
// @Produce      json
// @Param        status query string false "Status filter (pending|completed|failed|cancelled)"
// @Param        skip   query int false "Offset"
// @Param        limit  query int false "Page size (max 100)"
// @Success      200  {object}  response.APIResponse[[]models.Transaction]
// @Router       /api/v1/transactions [get]
func ApiListTransactions(log *zap.SugaredLogger, svc *transaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

		rows, err := svc.List(c.Request.Context(), &transaction.ListRequest{
			Status: types.TransactionStatus(c.Query("status")),
			Offset: skip,
			Limit:  limit,
		})
		if err != nil {
			logctx.FromGin(c, log).Errorw("transaction_list_failed", "err", err)
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      List transactions by user
// @Tags         Transactions
// @Produce      json
// @Param        user_id path string true "Derived user id"
// @Success      200  {object}  response.APIResponse[[]models.Transaction]
// @Router       /api/v1/transactions/user/{user_id} [get]
func ApiListUserTransactions(log *zap.SugaredLogger, svc *transaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.ListByUser(c.Request.Context(), c.Param("user_id"))
		if err != nil {
			logctx.FromGin(c, log).Errorw("transaction_list_by_user_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to list transactions"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      List transactions by session
// @Tags         Transactions
// @Produce      json
// @Param        session_id path string true "Internal session id"
// @Success      200  {object}  response.APIResponse[[]models.Transaction]
// @Router       /api/v1/transactions/session/{session_id} [get]
func ApiListSessionTransactions(log *zap.SugaredLogger, svc *transaction.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.ListBySession(c.Request.Context(), c.Param("session_id"))
		if err != nil {
			logctx.FromGin(c, log).Errorw("transaction_list_by_session_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to list transactions"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Receipt data
// @Description  Structured receipt for a completed transaction. Rendering is out of scope here.
// @Tags         Transactions
// @Produce      json
// @Param        id path int true "Transaction id"
// @Success      200  {object}  response.APIResponse[receipt.Data]
// @Failure      404  {object}  response.APIResponse[string]
// @Router       /api/v1/receipt/{id} [get]
func ApiGetReceipt(log *zap.SugaredLogger, svc *receipt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		data, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, receipt.ErrReceiptNotAvailable) {
				c.JSON(http.StatusNotFound, response.ErrorT(response.APIResponseCodeNotFound, "Completed transaction not found"))
				return
			}
			logctx.FromGin(c, log).Errorw("receipt_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to get receipt data"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(data))
	}
}

func RegisterTransactionRoutes(r gin.IRouter, log *zap.SugaredLogger, svc *transaction.Service, rcpt *receipt.Service) {
	r.GET("/transactions", ApiListTransactions(log, svc))
	r.GET("/transactions/:id", ApiGetTransaction(log, svc))
	r.GET("/transactions/user/:user_id", ApiListUserTransactions(log, svc))
	r.GET("/transactions/session/:session_id", ApiListSessionTransactions(log, svc))
	r.GET("/receipt/:id", ApiGetReceipt(log, rcpt))
}
