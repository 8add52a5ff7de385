package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"testing"
	"time"

	"go-repricer-ws/internal/ratelimit"
	"go-repricer-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWebhookService struct {
	err   error
	calls int
}

func (s *stubWebhookService) Process(ctx context.Context, raw []byte) (*service.WebhookResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &service.WebhookResponse{Success: true}, nil
}

func newWebhookApp(svc service.WebhookService, limit int, secret string) *fiber.App {
	app := fiber.New()
	h := NewWebhookHandler(svc, nil, ratelimit.New(limit, time.Minute), secret)
	app.Post("/api/v1/webhooks/takealot", h.HandleTakealot)
	return app
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/webhooks/takealot", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestWebhookValidSignatureAccepted(t *testing.T) {
	svc := &stubWebhookService{}
	app := newWebhookApp(svc, 100, "topsecret")
	body := []byte(`{"event_type":"price.update"}`)

	status := postWebhook(t, app, body, map[string]string{
		"X-Takealot-Signature": signBody("topsecret", body),
	})

	assert.Equal(t, 200, status)
	assert.Equal(t, 1, svc.calls)
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	svc := &stubWebhookService{}
	app := newWebhookApp(svc, 100, "topsecret")
	body := []byte(`{"event_type":"price.update"}`)

	status := postWebhook(t, app, body, map[string]string{
		"X-Takealot-Signature": signBody("wrong-secret", body),
	})

	assert.Equal(t, 401, status)
	// Nothing must be processed or stored on a bad signature.
	assert.Zero(t, svc.calls)
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	svc := &stubWebhookService{}
	app := newWebhookApp(svc, 100, "topsecret")

	status := postWebhook(t, app, []byte(`{"event_type":"price.update"}`), nil)

	assert.Equal(t, 401, status)
	assert.Zero(t, svc.calls)
}

func TestWebhookPermissiveWithoutSecret(t *testing.T) {
	svc := &stubWebhookService{}
	app := newWebhookApp(svc, 100, "")

	status := postWebhook(t, app, []byte(`{"event_type":"price.update"}`), nil)

	assert.Equal(t, 200, status)
	assert.Equal(t, 1, svc.calls)
}

func TestWebhookValidationErrorsReturn400(t *testing.T) {
	svc := &stubWebhookService{err: service.ErrMissingEventType}
	app := newWebhookApp(svc, 100, "")

	status := postWebhook(t, app, []byte(`{"user_id":"abc"}`), nil)

	assert.Equal(t, 400, status)
}

func TestWebhookRateLimitKeyedOnFirstForwardedHop(t *testing.T) {
	svc := &stubWebhookService{}
	app := newWebhookApp(svc, 1, "")
	body := []byte(`{"event_type":"price.update"}`)

	// Same source behind different proxy chains must share one key.
	status := postWebhook(t, app, body, map[string]string{
		"X-Forwarded-For": "10.0.0.1, 172.16.0.1",
	})
	assert.Equal(t, 200, status)

	status = postWebhook(t, app, body, map[string]string{
		"X-Forwarded-For": "10.0.0.1, 192.168.0.9",
	})
	assert.Equal(t, 429, status)

	// A different source still gets through.
	status = postWebhook(t, app, body, map[string]string{
		"X-Forwarded-For": "10.0.0.2",
	})
	assert.Equal(t, 200, status)
}
