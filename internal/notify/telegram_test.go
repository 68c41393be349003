package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, f.err
}

type chats map[uuid.UUID]int64

func (c chats) TelegramChatID(_ context.Context, id uuid.UUID) (int64, bool, error) {
	chat, ok := c[id]
	return chat, ok, nil
}

type failingChats struct{}

func (failingChats) TelegramChatID(context.Context, uuid.UUID) (int64, bool, error) {
	return 0, false, errors.New("db down")
}

func TestNotifySendsToLinkedChat(t *testing.T) {
	linked, unlinked := uuid.New(), uuid.New()
	s := &fakeSender{}
	n := &Telegram{bot: s, chats: chats{linked: 4242}}

	n.Notify(context.Background(), linked, "New achievement unlocked: Week streak")
	n.Notify(context.Background(), unlinked, "ignored")

	require.Len(t, s.sent, 1)
	assert.Equal(t, int64(4242), s.sent[0].ChatID)
	assert.Equal(t, "New achievement unlocked: Week streak", s.sent[0].Text)
}

func TestNotifySwallowsFailures(t *testing.T) {
	id := uuid.New()

	s := &fakeSender{err: errors.New("forbidden: bot was blocked by the user")}
	n := &Telegram{bot: s, chats: chats{id: 1}}
	assert.NotPanics(t, func() { n.Notify(context.Background(), id, "hi") })
	assert.Len(t, s.sent, 1)

	s = &fakeSender{}
	n = &Telegram{bot: s, chats: failingChats{}}
	n.Notify(context.Background(), id, "hi")
	assert.Empty(t, s.sent)

	assert.NotPanics(t, func() { Nop{}.Notify(context.Background(), id, "hi") })
}
