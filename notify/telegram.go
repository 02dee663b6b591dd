// Package notify tells customers about order status changes over Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"food-delivery/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatDirectory resolves the Telegram chat linked to an account.
type ChatDirectory interface {
	TelegramChatID(ctx context.Context, accountID int64) (int64, bool, error)
}

// DedupWindow suppresses a repeated (order, status) message, e.g. a redelivered event.
const DedupWindow = 30 * time.Second

type Telegram struct {
	sender Sender
	chats  ChatDirectory
	log    *slog.Logger

	mu   sync.Mutex
	sent map[sentKey]time.Time
	now  func() time.Time
}

type sentKey struct {
	orderID int64
	status  models.OrderStatus
}

func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return api, nil
}

func NewTelegram(sender Sender, chats ChatDirectory, log *slog.Logger) *Telegram {
	return &Telegram{
		sender: sender,
		chats:  chats,
		log:    log,
		sent:   make(map[sentKey]time.Time),
		now:    time.Now,
	}
}

// NotifyStatus skips customers without a linked chat.
func (t *Telegram) NotifyStatus(ctx context.Context, customerID, orderID int64, status models.OrderStatus) error {
	key := sentKey{orderID: orderID, status: status}
	if t.sentRecently(key) {
		t.log.Debug("duplicate status message skipped", slog.Int64("order_id", orderID), slog.String("status", string(status)))
		return nil
	}

	chatID, ok, err := t.chats.TelegramChatID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("lookup chat: %w", err)
	}
	if !ok {
		t.log.Debug("no telegram chat for customer", slog.Int64("customer_id", customerID))
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, StatusMessage(orderID, status))
	if _, err := t.sender.Send(msg); err != nil {
		return fmt.Errorf("send status message: %w", err)
	}
	t.markSent(key)
	t.log.Info("status message sent", slog.Int64("order_id", orderID), slog.String("status", string(status)))
	return nil
}

func (t *Telegram) sentRecently(k sentKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.sent[k]
	return ok && t.now().Sub(at) < DedupWindow
}

func (t *Telegram) markSent(k sentKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for key, at := range t.sent {
		if now.Sub(at) >= DedupWindow {
			delete(t.sent, key)
		}
	}
	t.sent[k] = now
}

// StatusMessage is the customer-facing text for a status change.
func StatusMessage(orderID int64, status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPending:
		return fmt.Sprintf("Order #%d received. Waiting for the restaurant to confirm.", orderID)
	case models.OrderStatusPreparing:
		return fmt.Sprintf("Order #%d is being prepared.", orderID)
	case models.OrderStatusOutForDelivery:
		return fmt.Sprintf("Order #%d is out for delivery.", orderID)
	case models.OrderStatusDelivered:
		return fmt.Sprintf("Order #%d has been delivered. Enjoy your meal!", orderID)
	case models.OrderStatusCancelled:
		return fmt.Sprintf("Order #%d was cancelled.", orderID)
	default:
		return fmt.Sprintf("Order #%d status: %s", orderID, status)
	}
}
