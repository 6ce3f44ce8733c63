package bot

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newWebhookFixture(t *testing.T, secret string) (*botFixture, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	router := gin.New()
	router.POST("/webhook/telegram", WebhookHandler(f.bot, secret))
	return f, router
}

func postUpdate(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const sampleUpdate = `{
	"update_id": 42,
	"message": {
		"message_id": 7,
		"from": {"id": 100, "is_bot": false, "first_name": "Ana", "username": "ana"},
		"chat": {"id": 100, "type": "private"},
		"date": 1756728000,
		"text": "/help"
	}
}`

func TestWebhookRepliesToCommand(t *testing.T) {
	f, router := newWebhookFixture(t, "")

	w := postUpdate(router, sampleUpdate, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(f.sender.sent) != 1 || !strings.Contains(f.sender.sent[0], "Commands") {
		t.Errorf("unexpected replies: %v", f.sender.sent)
	}
	// Both sides of the exchange land in the conversation log.
	if len(f.store.logged) != 2 {
		t.Fatalf("logged = %v", f.store.logged)
	}
	if !strings.HasPrefix(f.store.logged[0], "user:") || !strings.HasPrefix(f.store.logged[1], "bot:") {
		t.Errorf("unexpected log order: %v", f.store.logged)
	}
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	f, router := newWebhookFixture(t, "hunter2")

	w := postUpdate(router, sampleUpdate, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("no reply expected, got %v", f.sender.sent)
	}

	w = postUpdate(router, sampleUpdate, map[string]string{secretHeader: "hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("status with secret = %d, want 200", w.Code)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	_, router := newWebhookFixture(t, "")
	w := postUpdate(router, "{not json", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestWebhookIgnoresNonMessageUpdates(t *testing.T) {
	f, router := newWebhookFixture(t, "")
	w := postUpdate(router, `{"update_id": 43}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("no reply expected, got %v", f.sender.sent)
	}
}

func TestWebhookIgnoresBotSenders(t *testing.T) {
	f, router := newWebhookFixture(t, "")
	body := strings.Replace(sampleUpdate, `"is_bot": false`, `"is_bot": true`, 1)
	w := postUpdate(router, body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("no reply expected, got %v", f.sender.sent)
	}
}

func TestWebhookCreatesUserOnFirstContact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeUserStore{}
	b := New(BotConfig{
		Store:     store,
		Tasks:     &fakeTaskStore{},
		Creds:     &fakeCreds{token: "tok"},
		Events:    &fakeEvents{},
		Sender:    &fakeSender{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		PublicURL: "http://localhost:8080",
	})
	b.now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }
	router := gin.New()
	router.POST("/webhook/telegram", WebhookHandler(b, ""))

	w := postUpdate(router, sampleUpdate, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if store.user == nil || store.user.TelegramID != 100 {
		t.Errorf("user not created: %+v", store.user)
	}
}
