package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cerebra-app/checkout/internal/app/service/reconcile"
	"github.com/cerebra-app/checkout/pkg/types"
)

type stubProcessor struct {
	res *reconcile.Result
	err error

	gotBody []byte
	gotSig  string
}

func (s *stubProcessor) Process(_ context.Context, rawBody []byte, signatureHeader string) (*reconcile.Result, error) {
	s.gotBody = rawBody
	s.gotSig = signatureHeader
	return s.res, s.err
}

func postWebhook(t *testing.T, proc reconcile.Processor, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/whop", ApiWhopWebhook(zap.NewNop().Sugar(), proc))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whop", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiWhopWebhook_AcknowledgesHandledEvent(t *testing.T) {
	proc := &stubProcessor{res: &reconcile.Result{EventType: types.WebhookEventPaymentSucceeded, Matched: true}}
	w := postWebhook(t, proc, `{"event":"payment_succeeded"}`, map[string]string{"X-Whop-Signature": "sha256=abc"})

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"received","event":"payment_succeeded"}`, w.Body.String())
	require.Equal(t, `{"event":"payment_succeeded"}`, string(proc.gotBody))
	require.Equal(t, "sha256=abc", proc.gotSig)
}

func TestApiWhopWebhook_AcknowledgesUnmatchedEvent(t *testing.T) {
	// No pending transaction matched: still a 200 so the provider stops retrying.
	proc := &stubProcessor{res: &reconcile.Result{EventType: types.WebhookEventPaymentSucceeded, Matched: false}}
	w := postWebhook(t, proc, `{"event":"payment_succeeded"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"received","event":"payment_succeeded"}`, w.Body.String())
}

func TestApiWhopWebhook_RejectsBadSignatureUniformly(t *testing.T) {
	proc := &stubProcessor{err: reconcile.ErrUnauthenticated}

	missing := postWebhook(t, proc, `{}`, nil)
	wrong := postWebhook(t, proc, `{}`, map[string]string{"X-Whop-Signature": "sha256=deadbeef"})

	require.Equal(t, http.StatusUnauthorized, missing.Code)
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	// The response must not reveal whether the header was absent or mismatched.
	require.Equal(t, missing.Body.String(), wrong.Body.String())
	require.Contains(t, missing.Body.String(), "Invalid webhook signature")
}

func TestApiWhopWebhook_FallsBackToAlternateSignatureHeader(t *testing.T) {
	proc := &stubProcessor{res: &reconcile.Result{EventType: types.WebhookEventPaymentFailed}}
	w := postWebhook(t, proc, `{}`, map[string]string{"Whop-Signature": "sha256=alt"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "sha256=alt", proc.gotSig)
}

func TestApiWhopWebhook_InvalidPayloadIs400(t *testing.T) {
	proc := &stubProcessor{err: reconcile.ErrInvalidPayload}
	w := postWebhook(t, proc, `not json`, map[string]string{"X-Whop-Signature": "sha256=abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiWhopWebhook_InternalFailureIs500(t *testing.T) {
	proc := &stubProcessor{err: context.DeadlineExceeded}
	w := postWebhook(t, proc, `{"event":"payment_succeeded"}`, map[string]string{"X-Whop-Signature": "sha256=abc"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Webhook processing failed")
}
