package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex90271/stripecheckout/pkg/httputil"

	"github.com/alex90271/stripecheckout/internal/sender"
	"github.com/alex90271/stripecheckout/internal/service"
)

func newWebhookHandler(settings *stubSettings) *WebhookHandler {
	log := newTestLogger()
	svc := service.NewReconcilerService(
		settings,
		&stubSeen{first: true},
		(&stubProvider{}).factory,
		sender.NewDispatcher(log),
		nopPublisher{},
		log,
	)
	return NewWebhookHandler(svc, log)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleWebhook_RejectsNonJSONContentType(t *testing.T) {
	h := newWebhookHandler(&stubSettings{settings: testSettings()})

	req := httptest.NewRequest(http.MethodPost, "/stripe-checkout/v1/webhook", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestHandleWebhook_RejectsMissingSignatureHeader(t *testing.T) {
	h := newWebhookHandler(&stubSettings{settings: testSettings()})

	req := httptest.NewRequest(http.MethodPost, "/stripe-checkout/v1/webhook", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	h := newWebhookHandler(&stubSettings{settings: testSettings()})

	req := httptest.NewRequest(http.MethodPost, "/stripe-checkout/v1/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_SIGNATURE", resp.Error.Code)
}

func TestHandleWebhook_MissingWebhookSecret(t *testing.T) {
	s := testSettings()
	s.WebhookSecret = ""
	h := newWebhookHandler(&stubSettings{settings: s})

	req := httptest.NewRequest(http.MethodPost, "/stripe-checkout/v1/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
