package handlers

import (
	"errors"
	"net/http"

	"github.com/cerebra-app/checkout/internal/app/service/checkout"
	"github.com/cerebra-app/checkout/internal/app/service/identity"
	"github.com/cerebra-app/checkout/pkg/logctx"
	"github.com/cerebra-app/checkout/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createCheckoutRequest struct {
	PlanID        string         `json:"plan_id"`
	Amount        float64        `json:"amount" binding:"required,gt=0"`
	CustomerEmail string         `json:"customer_email" binding:"omitempty,email"`
	CustomerName  string         `json:"customer_name"`
	Metadata      map[string]any `json:"metadata"`
}

type createCheckoutResponse struct {
	CheckoutURL   string `json:"checkout_url"`
	TransactionID int64  `json:"transaction_id"`
	UserID        string `json:"user_id"`
	SessionToken  string `json:"session_token,omitempty"`
	Status        string `json:"status"`
}

// @Summary      Create checkout
// @Description  Runs the checkout gate and records a pending transaction, returning the provider-hosted checkout URL.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body handlers.createCheckoutRequest true "Checkout parameters"
// @Success      200  {object}  response.APIResponse[handlers.createCheckoutResponse]
// @Failure      409  {object}  response.APIResponse[string]
// @Router       /api/v1/checkout [post]
func ApiCreateCheckout(log *zap.SugaredLogger, mgr checkout.Manager, ident *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := mgr.Create(c.Request.Context(), &checkout.CreateRequest{
			PlanID:        req.PlanID,
			Amount:        req.Amount,
			CustomerEmail: req.CustomerEmail,
			CustomerName:  req.CustomerName,
			Metadata:      req.Metadata,
			Client:        ident.ExtractClientInfo(c),
		})
		if err != nil {
			if errors.Is(err, checkout.ErrCheckoutInFlight) || errors.Is(err, checkout.ErrAlreadyPurchased) {
				c.JSON(http.StatusConflict, response.ErrorT(response.APIResponseCodeConflict, err.Error()))
				return
			}
			logctx.FromGin(c, log).Errorw("checkout_creation_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Failed to create checkout"))
			return
		}

		c.JSON(http.StatusOK, response.OKT(createCheckoutResponse{
			CheckoutURL:   res.CheckoutURL,
			TransactionID: res.TransactionID,
			UserID:        res.UserID,
			SessionToken:  res.SessionToken,
			Status:        "created",
		}))
	}
}

type checkoutAccessResponse struct {
	CanCheckout           bool   `json:"can_checkout"`
	PendingTransactions   int64  `json:"pending_transactions"`
	CompletedTransactions int64  `json:"completed_transactions"`
	Message               string `json:"message"`
}

// @Summary      Checkout access
// @Description  Previews the checkout gate for a user without creating anything.
// @Tags         Checkout
// @Produce      json
// @Param        user_id path string true "Derived user id"
// @Param        plan_id query string false "Plan id (defaults to the configured plan)"
// @Success      200  {object}  response.APIResponse[handlers.checkoutAccessResponse]
// @Router       /api/v1/checkout-access/{user_id} [get]
func ApiCheckoutAccess(log *zap.SugaredLogger, mgr checkout.Manager, defaultPlanID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		planID := c.Query("plan_id")
		if planID == "" {
			planID = defaultPlanID
		}

		decision, err := mgr.Authorize(c.Request.Context(), c.Param("user_id"), planID)
		if err != nil {
			logctx.FromGin(c, log).Errorw("checkout_access_check_failed", "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Access check failed"))
			return
		}

		c.JSON(http.StatusOK, response.OKT(checkoutAccessResponse{
			CanCheckout:           decision.Allowed,
			PendingTransactions:   decision.Pending,
			CompletedTransactions: decision.Completed,
			Message:               decision.Reason,
		}))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, log *zap.SugaredLogger, mgr checkout.Manager, ident *identity.Service, defaultPlanID string) {
	r.POST("/checkout", ApiCreateCheckout(log, mgr, ident))
	r.GET("/checkout-access/:user_id", ApiCheckoutAccess(log, mgr, defaultPlanID))
}
