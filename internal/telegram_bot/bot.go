package telegram_bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/ArishaRashid/WhoYap/internal/service"
)

const (
	actionApprove = "approve"
	actionDecline = "decline"
	previewLimit  = 150
)

// JoinDecider applies the host's decision to a join request.
type JoinDecider interface {
	DecideJoin(ctx context.Context, requestID int64, approve bool) (*models.JoinRequest, error)
}

// Config for the bot
type Config struct {
	Enabled    bool
	Token      string
	HostChatID int64
}

// Bot notifies the session host about join requests and takes their
// approve/decline answers from inline buttons.
type Bot struct {
	api        *tgbotapi.BotAPI
	logger     *zap.Logger
	decider    JoinDecider
	hostChatID int64
}

// NewBot creates a new Telegram bot instance. It returns nil when the bot is
// disabled; a nil *Bot is safe to use.
func NewBot(cfg Config, decider JoinDecider, logger *zap.Logger) (*Bot, error) {
	if !cfg.Enabled || cfg.Token == "" {
		logger.Info("Telegram bot is disabled (telegram.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Bot{
		api:        botAPI,
		logger:     logger,
		decider:    decider,
		hostChatID: cfg.HostChatID,
	}, nil
}

// Start begins listening for updates from Telegram
func (b *Bot) Start(ctx context.Context) error {
	if b == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallbackQuery(ctx, update.CallbackQuery)
			} else if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

// parseCallbackData splits "approve:<id>" or "decline:<id>".
func parseCallbackData(data string) (approve bool, requestID int64, err error) {
	action, idStr, ok := strings.Cut(data, ":")
	if !ok {
		return false, 0, fmt.Errorf("invalid callback data %q", data)
	}
	requestID, err = strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return false, 0, fmt.Errorf("invalid request id %q: %w", idStr, err)
	}
	switch action {
	case actionApprove:
		return true, requestID, nil
	case actionDecline:
		return false, requestID, nil
	default:
		return false, 0, fmt.Errorf("unknown action %q", action)
	}
}

// handleCallbackQuery processes callback queries from inline buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.logger.Info("Received callback query",
		zap.String("data", query.Data),
		zap.Int64("user_id", query.From.ID),
	)

	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("Failed to send callback response", zap.Error(err))
	}

	if query.Message == nil || query.Message.Chat.ID != b.hostChatID {
		b.logger.Warn("Ignoring callback from a chat other than the host", zap.Int64("user_id", query.From.ID))
		return
	}

	approve, requestID, err := parseCallbackData(query.Data)
	if err != nil {
		b.logger.Error("Failed to parse callback data", zap.String("data", query.Data), zap.Error(err))
		b.sendMessage(query.From.ID, "❌ Could not process the request")
		return
	}

	req, err := b.decider.DecideJoin(ctx, requestID, approve)
	switch {
	case errors.Is(err, service.ErrJoinRequestDecided):
		b.sendMessage(query.From.ID, "ℹ️ This request was already decided")
		return
	case errors.Is(err, service.ErrNotFound):
		b.sendMessage(query.From.ID, "❌ Request not found")
		return
	case err != nil:
		b.logger.Error("Failed to decide join request", zap.Int64("request_id", requestID), zap.Error(err))
		b.sendMessage(query.From.ID, "❌ Could not update the request")
		return
	}

	responseMessage := "❌ Declined"
	if req.Status == models.JoinStatusApproved {
		responseMessage = "✅ Approved"
	}

	// Edit the original message to remove buttons
	edit := tgbotapi.NewEditMessageText(
		query.Message.Chat.ID,
		query.Message.MessageID,
		query.Message.Text+"\n\n"+responseMessage,
	)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message", zap.Error(err))
	}
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}
	switch message.Command() {
	case "start":
		b.sendMessage(message.Chat.ID, fmt.Sprintf(
			"👋 Hi, %s!\n\nI will tell you when someone asks to join one of your WhoYap sessions. "+
				"Use the buttons under each notification to let them in or turn them away.",
			message.From.FirstName))
	case "help":
		b.sendMessage(message.Chat.ID, "/start - Welcome message\n/help - This help\n\n"+
			"Your chat ID (set it as telegram.host_chat_id): "+strconv.FormatInt(message.Chat.ID, 10))
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help.")
	}
}

// notificationText renders the join request announcement.
func notificationText(session *models.GameSession, req *models.JoinRequest) string {
	user := req.RequestedByUsername
	if r := []rune(user); len(r) > previewLimit {
		user = string(r[:previewLimit]) + "..."
	}
	return fmt.Sprintf(
		"🔔 New join request\n\n"+
			"🎲 Session: %d (chat %d)\n"+
			"👤 Player: %s\n\n"+
			"Let them in?",
		session.ID, session.GroupChatID, user)
}

// SendJoinRequestNotification asks the host to approve or decline req.
func (b *Bot) SendJoinRequestNotification(session *models.GameSession, req *models.JoinRequest) error {
	if b == nil {
		return fmt.Errorf("bot is disabled")
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("%s:%d", actionApprove, req.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Decline", fmt.Sprintf("%s:%d", actionDecline, req.ID)),
		),
	)

	msg := tgbotapi.NewMessage(b.hostChatID, notificationText(session, req))
	msg.ReplyMarkup = keyboard

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send join request notification",
			zap.Int64("request_id", req.ID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send notification: %w", err)
	}

	b.logger.Info("Join request notification sent",
		zap.Int64("session_id", session.ID),
		zap.Int64("request_id", req.ID),
	)
	return nil
}

// sendMessage is a helper to send a simple text message
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
