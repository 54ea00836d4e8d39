package notifier

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type fakeSubscriptions struct {
	chats map[int64]int64
	err   error
}

func (f *fakeSubscriptions) Subscribe(ctx context.Context, chatID, userID int64) error {
	if f.err != nil {
		return f.err
	}
	f.chats[chatID] = userID
	return nil
}

func (f *fakeSubscriptions) Unsubscribe(ctx context.Context, chatID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.chats[chatID]
	delete(f.chats, chatID)
	return ok, nil
}

func command(text string, chatID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	subs := &fakeSubscriptions{chats: map[int64]int64{}}

	assert.Equal(t, replyStarted, HandleCommand(ctx, subs, command("/start", 7)))
	assert.Equal(t, int64(42), subs.chats[7])

	assert.Equal(t, replyStopped, HandleCommand(ctx, subs, command("/stop", 7)))
	assert.NotContains(t, subs.chats, int64(7))

	assert.Equal(t, replyNotSubscribed, HandleCommand(ctx, subs, command("/stop", 7)))
	assert.Equal(t, replyHelp, HandleCommand(ctx, subs, command("/help", 7)))
}

func TestHandleCommand_IgnoresPlainText(t *testing.T) {
	subs := &fakeSubscriptions{chats: map[int64]int64{}}
	msg := &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 1}}

	assert.Empty(t, HandleCommand(context.Background(), subs, msg))
	assert.Empty(t, HandleCommand(context.Background(), subs, nil))
}

func TestHandleCommand_StoreFailure(t *testing.T) {
	subs := &fakeSubscriptions{err: errors.New("db down")}

	assert.Equal(t, replyUnavailable, HandleCommand(context.Background(), subs, command("/start", 1)))
	assert.Equal(t, replyUnavailable, HandleCommand(context.Background(), subs, command("/stop", 1)))
}
