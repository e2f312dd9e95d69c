package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cerebra-app/checkout/internal/app/service/checkout"
	"github.com/cerebra-app/checkout/internal/app/service/identity"
)

type stubSessionMgr struct {
	res *checkout.SessionValidation
	err error

	gotSessionID string
	gotToken     string
}

func (s *stubSessionMgr) Authorize(_ context.Context, _, _ string) (checkout.GateDecision, error) {
	panic("not used")
}

func (s *stubSessionMgr) Create(_ context.Context, _ *checkout.CreateRequest) (*checkout.CreateResult, error) {
	panic("not used")
}

func (s *stubSessionMgr) ValidateSession(_ context.Context, providerSessionID, sessionToken string, _ identity.ClientInfo) (*checkout.SessionValidation, error) {
	s.gotSessionID = providerSessionID
	s.gotToken = sessionToken
	return s.res, s.err
}

func getValidateSession(t *testing.T, mgr checkout.Manager, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterSessionRoutes(g, zap.NewNop().Sugar(), mgr, identity.NewService())

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiValidateSession_ReturnsValidation(t *testing.T) {
	mgr := &stubSessionMgr{res: &checkout.SessionValidation{
		Valid:         true,
		TransactionID: 7,
		UserID:        "user_1",
		SessionStatus: "completed",
	}}
	w := getValidateSession(t, mgr, "/api/v1/validate-session/ch_123", map[string]string{"X-Session-Token": "tok"})

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"valid":true`)
	require.Contains(t, w.Body.String(), `"transaction_id":7`)
	require.Equal(t, "ch_123", mgr.gotSessionID)
	require.Equal(t, "tok", mgr.gotToken)
}

func TestApiValidateSession_TokenFallsBackToQuery(t *testing.T) {
	mgr := &stubSessionMgr{res: &checkout.SessionValidation{Valid: true}}
	w := getValidateSession(t, mgr, "/api/v1/validate-session/ch_123?session_token=qtok", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "qtok", mgr.gotToken)
}

func TestApiValidateSession_UnknownSessionIs404(t *testing.T) {
	mgr := &stubSessionMgr{err: checkout.ErrSessionNotFound}
	w := getValidateSession(t, mgr, "/api/v1/validate-session/ch_missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestApiValidateSession_ForeignSessionIs403(t *testing.T) {
	mgr := &stubSessionMgr{err: checkout.ErrSessionForbidden}
	w := getValidateSession(t, mgr, "/api/v1/validate-session/ch_123", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Unauthorized access to payment session")
}
