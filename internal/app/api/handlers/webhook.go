package handlers

import (
	"errors"
	"net/http"

	"github.com/cerebra-app/checkout/internal/app/service/reconcile"
	"github.com/cerebra-app/checkout/pkg/logctx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// whopWebhookAck is the exact acknowledgement shape the provider expects.
type whopWebhookAck struct {
	Status string `json:"status"`
	Event  string `json:"event"`
}

// @Summary      Whop Webhook
// @Description  Handles payment webhooks from Whop. The raw body is verified against the shared webhook secret before any processing.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        X-Whop-Signature header string true "HMAC-SHA256 signature, optionally prefixed with sha256="
// @Success      200  {object}  handlers.whopWebhookAck
// @Failure      401  {object}  map[string]string
// @Router       /webhooks/whop [post]
// ApiWhopWebhook ingests provider payment webhooks.
func ApiWhopWebhook(log *zap.SugaredLogger, proc reconcile.Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The raw bytes must be preserved for signature verification;
		// verifying over re-serialized JSON is invalid.
		body, err := c.GetRawData()
		if err != nil {
			logctx.FromGin(c, log).Errorw("webhook_body_read_failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Webhook processing failed"})
			return
		}

		sig := c.GetHeader("X-Whop-Signature")
		if sig == "" {
			sig = c.GetHeader("Whop-Signature")
		}

		res, err := proc.Process(c.Request.Context(), body, sig)
		if err != nil {
			switch {
			case errors.Is(err, reconcile.ErrUnauthenticated):
				// Missing and invalid signatures are indistinguishable.
				logctx.FromGin(c, log).Warnw("webhook_unauthenticated")
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid webhook signature"})
			case errors.Is(err, reconcile.ErrInvalidPayload):
				logctx.FromGin(c, log).Warnw("webhook_invalid_payload", "err", err)
				c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid webhook payload"})
			default:
				logctx.FromGin(c, log).Errorw("webhook_processing_failed", "err", err)
				c.JSON(http.StatusInternalServerError, gin.H{"detail": "Webhook processing failed"})
			}
			return
		}

		c.JSON(http.StatusOK, whopWebhookAck{Status: "received", Event: string(res.EventType)})
	}
}

func RegisterWebhookRoutes(r gin.IRouter, log *zap.SugaredLogger, proc reconcile.Processor) {
	r.POST("/whop", ApiWhopWebhook(log, proc))
}
