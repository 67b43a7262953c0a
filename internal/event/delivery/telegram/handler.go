package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"placement-reminder/internal/event"
	pkgLog "placement-reminder/pkg/log"
	pkgResponse "placement-reminder/pkg/response"
	pkgTelegram "placement-reminder/pkg/telegram"
)

type handler struct {
	l   pkgLog.Logger
	uc  event.UseCase
	bot *pkgTelegram.Bot
}

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the update in a
// background goroutine: Telegram expects an answer within a few seconds,
// while ingestion (Gmail) and approval (Calendar) can take far longer.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		go func() {
			// Detach from the request context, which is cancelled after the
			// 200 goes out.
			h.processCallback(context.Background(), cb)
		}()
	case update.Message != nil:
		msg := update.Message
		go func() {
			h.processMessage(context.Background(), msg)
		}()
	default:
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

// processMessage handles /start and /fetch commands; anything else gets a
// short usage hint.
func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) {
	if msg.Text == "" || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	switch msg.Text {
	case "/start":
		if err := h.bot.SendMessageWithMode(chatID,
			"👋 Hi! I watch your inbox for *placement and interview emails* and help you add them to Google Calendar.\n\nUse /fetch to check for new mails now.",
			"Markdown",
		); err != nil {
			h.l.Warnf(ctx, "telegram handler: failed to send welcome: %v", err)
		}
		h.runIngest(ctx, chatID)
	case "/fetch":
		if err := h.bot.SendMessage(chatID, "Fetching placement mails..."); err != nil {
			h.l.Warnf(ctx, "telegram handler: failed to send ack: %v", err)
		}
		h.runIngest(ctx, chatID)
	default:
		_ = h.bot.SendMessage(chatID, "Use /fetch to check for new placement mails.")
	}
}

func (h *handler) runIngest(ctx context.Context, chatID int64) {
	out, err := h.uc.Ingest(ctx)
	if err != nil {
		h.l.Errorf(ctx, "telegram handler: ingest failed: %v", err)
		_ = h.bot.SendMessage(chatID, fmt.Sprintf("Could not fetch emails: %v", err))
		return
	}
	if len(out.Staged) == 0 {
		_ = h.bot.SendMessage(chatID, "No new placement-related emails found.")
	}
}

// processCallback routes an approve/reject button press to the state machine
// and edits the prompt message with the outcome.
func (h *handler) processCallback(ctx context.Context, cb *pkgTelegram.CallbackQuery) {
	if err := h.bot.AnswerCallbackQuery(cb.ID); err != nil {
		h.l.Warnf(ctx, "telegram handler: failed to answer callback: %v", err)
	}

	action, token, ok := splitCallbackData(cb.Data)
	if !ok {
		h.editOrLog(ctx, cb, "Invalid callback data.")
		return
	}

	switch action {
	case "approve":
		out, err := h.uc.Approve(ctx, token)
		if err != nil {
			h.editOrLog(ctx, cb, decisionErrorMessage(err))
			return
		}
		h.editOrLog(ctx, cb, fmt.Sprintf("✅ Added to calendar: %s\n%s", out.Subject, out.CalendarLink))
	case "reject":
		out, err := h.uc.Reject(ctx, token)
		if err != nil {
			h.editOrLog(ctx, cb, decisionErrorMessage(err))
			return
		}
		h.editOrLog(ctx, cb, fmt.Sprintf("❌ Rejected: %s", out.Subject))
	default:
		h.editOrLog(ctx, cb, "Invalid callback data.")
	}
}

// editOrLog replaces the prompt message text, falling back to a plain
// message when the original message is unavailable.
func (h *handler) editOrLog(ctx context.Context, cb *pkgTelegram.CallbackQuery, text string) {
	if cb.Message == nil || cb.Message.Chat == nil {
		h.l.Warnf(ctx, "telegram handler: callback without message, outcome was: %s", text)
		return
	}
	if err := h.bot.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text); err != nil {
		h.l.Warnf(ctx, "telegram handler: failed to edit message: %v", err)
		_ = h.bot.SendMessage(cb.Message.Chat.ID, text)
	}
}

func splitCallbackData(data string) (action, token string, ok bool) {
	parts := strings.SplitN(data, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
