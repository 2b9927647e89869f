// Package bot implements the Telegram conversation controller: per-chat
// state (pick a document type, then paste carrier IDs), the authorization
// allow-list, and the live status message each dispatch run edits in place.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tsstech/billingbot/internal/billing"
	"github.com/tsstech/billingbot/internal/dispatch"
)

// Conversation prompts.
const (
	msgSelectType = "Select document type:"
	msgUseButtons = "Use provided buttons."
	msgScanning   = "📥 Received IDs... scanning Zoho WorkDrive..."
)

// DefaultEditInterval is the minimum spacing between status-message edits.
// Telegram throttles chats that edit faster than about once per second.
const DefaultEditInterval = time.Second

// API is the slice of the Telegram client the bot needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Dispatcher runs one dispatch job to completion and returns its report.
type Dispatcher interface {
	Run(ctx context.Context, job dispatch.Job, sink dispatch.Sink) *dispatch.Report
}

// Settings is the slice of configuration the bot consumes. It can be swapped
// at runtime via ApplySettings when the config file is reloaded.
type Settings struct {
	AllowedUserIDs  []int64
	SourceFolders   map[billing.Category]string
	ArchiveFolderID string
}

type stage int

const (
	stagePickingType stage = iota
	stageAwaitingIDs
)

type conversation struct {
	stage    stage
	category billing.Category
}

// BotConfig holds the collaborators needed to construct a Bot.
type BotConfig struct {
	API        API
	Dispatcher Dispatcher
	Settings   Settings
	Logger     *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithEditInterval overrides the status-message edit spacing (for testing).
func WithEditInterval(d time.Duration) Option {
	return func(b *Bot) {
		b.editInterval = d
	}
}

// Bot routes Telegram updates through per-chat conversations and hands
// completed ID lists to the dispatcher. Each run executes in its own
// goroutine so other chats stay responsive.
type Bot struct {
	api        API
	dispatcher Dispatcher
	logger     *slog.Logger

	editInterval time.Duration

	mu    sync.Mutex
	convs map[int64]*conversation

	settingsMu sync.RWMutex
	allowed    map[int64]struct{}
	folders    map[billing.Category]string
	archiveID  string

	wg sync.WaitGroup
}

// NewBot creates a conversation controller.
func NewBot(cfg BotConfig, opts ...Option) *Bot {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bot{
		api:          cfg.API,
		dispatcher:   cfg.Dispatcher,
		logger:       logger,
		editInterval: DefaultEditInterval,
		convs:        make(map[int64]*conversation),
	}
	b.ApplySettings(cfg.Settings)

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// ApplySettings swaps the allow-list and folder mapping. Conversations in
// flight keep their state; in-flight runs keep the folders they started with.
func (b *Bot) ApplySettings(s Settings) {
	allowed := make(map[int64]struct{}, len(s.AllowedUserIDs))
	for _, id := range s.AllowedUserIDs {
		allowed[id] = struct{}{}
	}

	folders := make(map[billing.Category]string, len(s.SourceFolders))
	for cat, id := range s.SourceFolders {
		folders[cat] = id
	}

	b.settingsMu.Lock()
	b.allowed = allowed
	b.folders = folders
	b.archiveID = s.ArchiveFolderID
	b.settingsMu.Unlock()
}

// Run consumes updates until the context is cancelled or the channel closes,
// then waits for in-flight dispatch runs to finish.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.isAllowed(userID) {
		b.logger.Warn("unauthorized user ignored", "user_id", userID, "chat_id", msg.Chat.ID)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "/start" || strings.HasPrefix(text, "/start ") {
		b.startConversation(msg.Chat.ID)
		return
	}

	b.mu.Lock()
	conv, ok := b.convs[msg.Chat.ID]
	b.mu.Unlock()
	if !ok {
		// No conversation yet; treat any first contact like /start.
		b.startConversation(msg.Chat.ID)
		return
	}

	switch conv.stage {
	case stagePickingType:
		b.handleTypePick(msg.Chat.ID, conv, text)
	case stageAwaitingIDs:
		b.handleIDs(ctx, msg.Chat.ID, conv, text)
	}
}

func (b *Bot) startConversation(chatID int64) {
	b.mu.Lock()
	b.convs[chatID] = &conversation{stage: stagePickingType}
	b.mu.Unlock()

	b.send(chatID, msgSelectType, homeKeyboard())
}

func (b *Bot) handleTypePick(chatID int64, conv *conversation, text string) {
	cat, ok := billing.ParseCategory(text)
	if !ok {
		b.send(chatID, msgUseButtons, homeKeyboard())
		return
	}

	b.mu.Lock()
	conv.category = cat
	conv.stage = stageAwaitingIDs
	b.mu.Unlock()

	b.send(chatID, strings.ToUpper(cat.String())+" selected. Send Carrier IDs separated by spaces.", backKeyboard())
}

func (b *Bot) handleIDs(ctx context.Context, chatID int64, conv *conversation, text string) {
	if strings.HasPrefix(strings.ToLower(text), "go back") {
		b.startConversation(chatID)
		return
	}

	b.mu.Lock()
	cat := conv.category
	b.mu.Unlock()

	b.settingsMu.RLock()
	folderID, ok := b.folders[cat]
	archiveID := b.archiveID
	b.settingsMu.RUnlock()
	if !ok {
		b.logger.Error("no source folder configured", "category", cat.String(), "chat_id", chatID)
		return
	}

	ids := strings.Fields(text)

	status, err := b.api.Send(tgbotapi.NewMessage(chatID, msgScanning))
	if err != nil {
		b.logger.Error("failed to post status message", "chat_id", chatID, "error", err)
		return
	}

	job := dispatch.Job{
		Category:        cat,
		SourceFolderID:  folderID,
		ArchiveFolderID: archiveID,
		CarrierIDs:      ids,
	}
	sink := newStatusSink(b.api, chatID, status.MessageID, b.editInterval, b.logger)

	b.logger.Info("dispatch run accepted",
		"category", cat.String(), "chat_id", chatID, "carrier_ids", len(ids))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.dispatcher.Run(ctx, job, sink)
	}()
}

func (b *Bot) isAllowed(userID int64) bool {
	b.settingsMu.RLock()
	defer b.settingsMu.RUnlock()
	_, ok := b.allowed[userID]
	return ok
}

func (b *Bot) send(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func homeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Invoice"),
			tgbotapi.NewKeyboardButton("Zelle"),
			tgbotapi.NewKeyboardButton("Debtor"),
		),
	)
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Go Back"),
		),
	)
}
