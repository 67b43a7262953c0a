package telegram

import (
	"github.com/gin-gonic/gin"

	"placement-reminder/internal/event"
	pkgLog "placement-reminder/pkg/log"
	pkgTelegram "placement-reminder/pkg/telegram"
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// New creates a new Telegram delivery handler.
func New(l pkgLog.Logger, uc event.UseCase, bot *pkgTelegram.Bot) Handler {
	return &handler{
		l:   l,
		uc:  uc,
		bot: bot,
	}
}
