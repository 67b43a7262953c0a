package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"placement-reminder/internal/event"
	"placement-reminder/internal/event/delivery/telegram"
	pkgTelegram "placement-reminder/pkg/telegram"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Info(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Error(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...any)                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Panic(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...any)  {}

type mockUseCase struct {
	mu sync.Mutex

	ingestOutput  event.IngestOutput
	ingestErr     error
	ingestCalls   int
	approveOutput event.DecisionOutput
	approveErr    error
	approveTokens []string
	rejectOutput  event.DecisionOutput
	rejectErr     error
	rejectTokens  []string
}

func (m *mockUseCase) Ingest(ctx context.Context) (event.IngestOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingestCalls++
	return m.ingestOutput, m.ingestErr
}

func (m *mockUseCase) Approve(ctx context.Context, token string) (event.DecisionOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approveTokens = append(m.approveTokens, token)
	return m.approveOutput, m.approveErr
}

func (m *mockUseCase) Reject(ctx context.Context, token string) (event.DecisionOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectTokens = append(m.rejectTokens, token)
	return m.rejectOutput, m.rejectErr
}

func (m *mockUseCase) counts() (ingest, approve, reject int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingestCalls, len(m.approveTokens), len(m.rejectTokens)
}

// botCapture records what the handler sent back through the Bot API.
type botCapture struct {
	mu      sync.Mutex
	sent    []string
	edited  []string
	answers int
}

func (c *botCapture) record(path string, payload map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case strings.HasSuffix(path, "/sendMessage"):
		if text, ok := payload["text"].(string); ok {
			c.sent = append(c.sent, text)
		}
	case strings.HasSuffix(path, "/editMessageText"):
		if text, ok := payload["text"].(string); ok {
			c.edited = append(c.edited, text)
		}
	case strings.HasSuffix(path, "/answerCallbackQuery"):
		c.answers++
	}
}

func (c *botCapture) snapshot() (sent, edited []string, answers int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.sent...), append([]string{}, c.edited...), c.answers
}

// ── Test Helpers ───────────────────────────────────────────────────────────

func newTestEnv(t *testing.T, muc *mockUseCase) (*gin.Engine, *botCapture, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	capture := &botCapture{}
	tgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		capture.record(r.URL.Path, payload)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true}`))
	}))

	bot := pkgTelegram.NewBot("test-token")
	bot.SetAPIURL(tgServer.URL)

	engine := gin.New()
	h := telegram.New(&mockLogger{}, muc, bot)
	engine.POST("/webhook/telegram", h.HandleWebhook)

	return engine, capture, tgServer
}

func postUpdate(engine *gin.Engine, update pkgTelegram.Update) *httptest.ResponseRecorder {
	body, _ := json.Marshal(update)
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func messageUpdate(text string) pkgTelegram.Update {
	return pkgTelegram.Update{
		UpdateID: 1,
		Message: &pkgTelegram.Message{
			MessageID: 1,
			Chat:      &pkgTelegram.Chat{ID: 123},
			From:      &pkgTelegram.User{ID: 456},
			Text:      text,
		},
	}
}

func callbackUpdate(data string) pkgTelegram.Update {
	return pkgTelegram.Update{
		UpdateID: 2,
		CallbackQuery: &pkgTelegram.CallbackQuery{
			ID:   "cb-1",
			Data: data,
			From: &pkgTelegram.User{ID: 456},
			Message: &pkgTelegram.Message{
				MessageID: 99,
				Chat:      &pkgTelegram.Chat{ID: 123},
			},
		},
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got: %v", substr, msgs)
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	engine, _, tgSrv := newTestEnv(t, &mockUseCase{})
	defer tgSrv.Close()

	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleWebhook_EmptyUpdate(t *testing.T) {
	engine, _, tgSrv := newTestEnv(t, &mockUseCase{})
	defer tgSrv.Close()

	w := postUpdate(engine, pkgTelegram.Update{UpdateID: 7})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHandleStart(t *testing.T) {
	muc := &mockUseCase{}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	w := postUpdate(engine, messageUpdate("/start"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	waitFor(t, time.Second, func() bool {
		sent, _, _ := capture.snapshot()
		return len(sent) >= 2
	})
	sent, _, _ := capture.snapshot()
	assertContains(t, sent, "placement and interview emails")
	assertContains(t, sent, "No new placement-related emails found.")

	ingest, _, _ := muc.counts()
	if ingest != 1 {
		t.Errorf("ingest called %d times, want 1", ingest)
	}
}

func TestHandleFetch(t *testing.T) {
	muc := &mockUseCase{
		ingestOutput: event.IngestOutput{Staged: []event.StagedEvent{{Token: "tok-1"}}},
	}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	w := postUpdate(engine, messageUpdate("/fetch"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	waitFor(t, time.Second, func() bool {
		ingest, _, _ := muc.counts()
		return ingest == 1
	})
	waitFor(t, time.Second, func() bool {
		sent, _, _ := capture.snapshot()
		return len(sent) >= 1
	})
	sent, _, _ := capture.snapshot()
	assertContains(t, sent, "Fetching placement mails...")
	for _, m := range sent {
		if strings.Contains(m, "No new placement-related emails found.") {
			t.Errorf("got %q despite a staged event", m)
		}
	}
}

func TestHandleFetchIngestError(t *testing.T) {
	muc := &mockUseCase{ingestErr: errors.New("gmail down")}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	postUpdate(engine, messageUpdate("/fetch"))

	waitFor(t, time.Second, func() bool {
		sent, _, _ := capture.snapshot()
		return len(sent) >= 2
	})
	sent, _, _ := capture.snapshot()
	assertContains(t, sent, "Could not fetch emails")
}

func TestHandleUnknownCommand(t *testing.T) {
	muc := &mockUseCase{}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	postUpdate(engine, messageUpdate("hello there"))

	waitFor(t, time.Second, func() bool {
		sent, _, _ := capture.snapshot()
		return len(sent) >= 1
	})
	sent, _, _ := capture.snapshot()
	assertContains(t, sent, "Use /fetch to check for new placement mails.")

	ingest, _, _ := muc.counts()
	if ingest != 0 {
		t.Errorf("ingest called %d times, want 0", ingest)
	}
}

func TestHandleApproveCallback(t *testing.T) {
	muc := &mockUseCase{
		approveOutput: event.DecisionOutput{
			Subject:      "Interview call letter",
			CalendarLink: "https://calendar.google.com/event?eid=abc123",
		},
	}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	w := postUpdate(engine, callbackUpdate("approve|tok-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	waitFor(t, time.Second, func() bool {
		_, edited, answers := capture.snapshot()
		return answers >= 1 && len(edited) >= 1
	})
	_, edited, _ := capture.snapshot()
	assertContains(t, edited, "✅ Added to calendar: Interview call letter")
	assertContains(t, edited, "https://calendar.google.com/event?eid=abc123")

	muc.mu.Lock()
	defer muc.mu.Unlock()
	if len(muc.approveTokens) != 1 || muc.approveTokens[0] != "tok-1" {
		t.Errorf("approve tokens = %v, want [tok-1]", muc.approveTokens)
	}
}

func TestHandleRejectCallback(t *testing.T) {
	muc := &mockUseCase{
		rejectOutput: event.DecisionOutput{Subject: "Spam drive"},
	}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	postUpdate(engine, callbackUpdate("reject|tok-2"))

	waitFor(t, time.Second, func() bool {
		_, edited, _ := capture.snapshot()
		return len(edited) >= 1
	})
	_, edited, _ := capture.snapshot()
	assertContains(t, edited, "❌ Rejected: Spam drive")
}

func TestHandleExpiredTokenCallback(t *testing.T) {
	muc := &mockUseCase{approveErr: event.ErrTokenExpired}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	postUpdate(engine, callbackUpdate("approve|stale"))

	waitFor(t, time.Second, func() bool {
		_, edited, _ := capture.snapshot()
		return len(edited) >= 1
	})
	_, edited, _ := capture.snapshot()
	assertContains(t, edited, "This item expired or was already processed.")
}

func TestHandleNoDatetimeCallback(t *testing.T) {
	muc := &mockUseCase{approveErr: event.ErrNoDatetime}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	postUpdate(engine, callbackUpdate("approve|tok-3"))

	waitFor(t, time.Second, func() bool {
		_, edited, _ := capture.snapshot()
		return len(edited) >= 1
	})
	_, edited, _ := capture.snapshot()
	assertContains(t, edited, "No date/time detected in the email.")
}

func TestHandleMalformedCallbackData(t *testing.T) {
	muc := &mockUseCase{}
	engine, capture, tgSrv := newTestEnv(t, muc)
	defer tgSrv.Close()

	postUpdate(engine, callbackUpdate("nonsense"))

	waitFor(t, time.Second, func() bool {
		_, edited, _ := capture.snapshot()
		return len(edited) >= 1
	})
	_, edited, _ := capture.snapshot()
	assertContains(t, edited, "Invalid callback data.")

	_, approve, reject := muc.counts()
	if approve != 0 || reject != 0 {
		t.Errorf("decision calls = %d approve, %d reject, want none", approve, reject)
	}
}
