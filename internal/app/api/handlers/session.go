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

// @Summary      Validate payment session
// @Description  Proves the caller may access a provider checkout session, either via the signed session token or advisory client evidence.
// @Tags         Checkout
// @Produce      json
// @Param        provider_session_id path string true "Provider session id"
// @Param        X-Session-Token header string false "Signed session token from checkout creation"
// @Success      200  {object}  response.APIResponse[checkout.SessionValidation]
// @Failure      403  {object}  response.APIResponse[string]
// @Failure      404  {object}  response.APIResponse[string]
// @Router       /api/v1/validate-session/{provider_session_id} [get]
func ApiValidateSession(log *zap.SugaredLogger, mgr checkout.Manager, ident *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Session-Token")
		if token == "" {
			token = c.Query("session_token")
		}

		v, err := mgr.ValidateSession(c.Request.Context(), c.Param("provider_session_id"), token, ident.ExtractClientInfo(c))
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrSessionNotFound):
				c.JSON(http.StatusNotFound, response.ErrorT(response.APIResponseCodeNotFound, "Session not found"))
			case errors.Is(err, checkout.ErrSessionForbidden):
				c.JSON(http.StatusForbidden, response.ErrorT(response.APIResponseCodeForbidden, "Unauthorized access to payment session"))
			default:
				logctx.FromGin(c, log).Errorw("session_validation_failed", "err", err)
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "Session validation failed"))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(v))
	}
}

func RegisterSessionRoutes(r gin.IRouter, log *zap.SugaredLogger, mgr checkout.Manager, ident *identity.Service) {
	r.GET("/validate-session/:provider_session_id", ApiValidateSession(log, mgr, ident))
}
