package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"food-delivery/logger"
	"food-delivery/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

type staticChats map[int64]int64

func (s staticChats) TelegramChatID(_ context.Context, id int64) (int64, bool, error) {
	chat, ok := s[id]
	return chat, ok, nil
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		want   string
	}{
		{models.OrderStatusPreparing, "being prepared"},
		{models.OrderStatusOutForDelivery, "out for delivery"},
		{models.OrderStatusDelivered, "delivered"},
		{models.OrderStatusCancelled, "cancelled"},
		{"Weird", "Weird"},
	}
	for _, tt := range tests {
		got := StatusMessage(42, tt.status)
		if !strings.Contains(got, "#42") || !strings.Contains(got, tt.want) {
			t.Errorf("StatusMessage(42, %q) = %q, want it to mention #42 and %q", tt.status, got, tt.want)
		}
	}
}

func TestNotifyStatusSendsToLinkedChat(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 555 && strings.Contains(msg.Text, "#7")
	})).Return(nil).Once()

	tg := NewTelegram(sender, staticChats{1: 555}, logger.Discard())
	require.NoError(t, tg.NotifyStatus(context.Background(), 1, 7, models.OrderStatusPreparing))
	sender.AssertExpectations(t)
}

func TestNotifyStatusSkipsUnlinkedCustomer(t *testing.T) {
	sender := &mockSender{}
	tg := NewTelegram(sender, staticChats{}, logger.Discard())

	require.NoError(t, tg.NotifyStatus(context.Background(), 1, 7, models.OrderStatusPreparing))
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestNotifyStatusSendError(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(errors.New("blocked by user"))

	tg := NewTelegram(sender, staticChats{1: 555}, logger.Discard())
	assert.Error(t, tg.NotifyStatus(context.Background(), 1, 7, models.OrderStatusDelivered))
}

func TestNotifyStatusSkipsDuplicateWithinWindow(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(nil)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tg := NewTelegram(sender, staticChats{1: 555}, logger.Discard())
	tg.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, tg.NotifyStatus(ctx, 1, 7, models.OrderStatusPreparing))
	require.NoError(t, tg.NotifyStatus(ctx, 1, 7, models.OrderStatusPreparing))
	sender.AssertNumberOfCalls(t, "Send", 1)

	require.NoError(t, tg.NotifyStatus(ctx, 1, 7, models.OrderStatusOutForDelivery))
	sender.AssertNumberOfCalls(t, "Send", 2)

	now = now.Add(DedupWindow)
	require.NoError(t, tg.NotifyStatus(ctx, 1, 7, models.OrderStatusPreparing))
	sender.AssertNumberOfCalls(t, "Send", 3)
}

func TestNotifyStatusRetriesAfterSendError(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(errors.New("timeout")).Once()
	sender.On("Send", mock.Anything).Return(nil).Once()

	tg := NewTelegram(sender, staticChats{1: 555}, logger.Discard())
	ctx := context.Background()
	assert.Error(t, tg.NotifyStatus(ctx, 1, 7, models.OrderStatusDelivered))
	assert.NoError(t, tg.NotifyStatus(ctx, 1, 7, models.OrderStatusDelivered))
	sender.AssertExpectations(t)
}
