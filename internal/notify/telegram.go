// Package notify pushes short messages to users over Telegram.
package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

// ChatLookup resolves the Telegram chat linked to a user, if any.
type ChatLookup interface {
	TelegramChatID(ctx context.Context, userID uuid.UUID) (chatID int64, ok bool, err error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot   sender
	chats ChatLookup
}

func NewTelegram(token string, chats ChatLookup) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chats: chats}, nil
}

// Notify is best effort: users without a linked chat are skipped and send
// failures are only logged.
func (t *Telegram) Notify(ctx context.Context, userID uuid.UUID, text string) {
	chatID, ok, err := t.chats.TelegramChatID(ctx, userID)
	if err != nil {
		logx.WithContext(ctx).Errorw("telegram chat lookup failed",
			logx.Field("user_id", userID.String()), logx.Field("error", err.Error()))
		return
	}
	if !ok {
		return
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logx.WithContext(ctx).Errorw("telegram send failed",
			logx.Field("user_id", userID.String()), logx.Field("error", err.Error()))
	}
}

// Nop drops every message. Used when no bot token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, uuid.UUID, string) {}
