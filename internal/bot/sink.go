package bot

import (
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/tsstech/billingbot/internal/dispatch"
)

const msgPreparing = "🔍 Matching PDFs found, preparing emails..."

// statusSink renders run progress by editing one chat message in place.
// Intermediate edits are rate limited and dropped when they arrive too fast;
// the final report always goes out.
type statusSink struct {
	api       API
	chatID    int64
	messageID int
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func newStatusSink(api API, chatID int64, messageID int, editInterval time.Duration, logger *slog.Logger) *statusSink {
	return &statusSink{
		api:       api,
		chatID:    chatID,
		messageID: messageID,
		limiter:   rate.NewLimiter(rate.Every(editInterval), 1),
		logger:    logger,
	}
}

func (s *statusSink) Scanned(items int) {
	s.edit(msgPreparing, false)
}

func (s *statusSink) Progress(p dispatch.Progress) {
	text := fmt.Sprintf("📤 Sending %d/%d — Carrier ID: %s\n🕒 Elapsed: %.1fs | ETA: %.1fs",
		p.Index, p.Total, p.CarrierID, p.Elapsed.Seconds(), p.ETA.Seconds())
	s.edit(text, false)
}

func (s *statusSink) Report(r *dispatch.Report) {
	s.edit(r.Text(), true)
}

func (s *statusSink) edit(text string, force bool) {
	if !force && !s.limiter.Allow() {
		return
	}

	if _, err := s.api.Send(tgbotapi.NewEditMessageText(s.chatID, s.messageID, text)); err != nil {
		s.logger.Warn("failed to edit status message",
			"chat_id", s.chatID, "message_id", s.messageID, "error", err)
	}
}
