// ABOUTME: MessageRouter implements the per-frame protocol: resolve receiver,
// ABOUTME: translate fail-open, persist before delivery, then fire-and-forget push

package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/babel-gateway/internal/auth"
	"github.com/2389/babel-gateway/internal/metrics"
	"github.com/2389/babel-gateway/internal/session"
	"github.com/2389/babel-gateway/internal/store"
	"github.com/2389/babel-gateway/internal/translate"
)

// InboundFrame is the JSON frame a client sends over its WebSocket.
type InboundFrame struct {
	ReceiverID int64  `json:"receiver_id"`
	Message    string `json:"message"`
}

// DeliveryFrame is the JSON frame pushed to the receiver's WebSocket.
type DeliveryFrame struct {
	ID                int64  `json:"id"`
	SenderID          int64  `json:"sender_id"`
	ReceiverID        int64  `json:"receiver_id"`
	OriginalMessage   string `json:"original_message"`
	TranslatedMessage string `json:"translated_message"`
	Timestamp         string `json:"timestamp"`
}

// MessageStore defines what the router needs from storage.
type MessageStore interface {
	GetUser(ctx context.Context, id int64) (*store.User, error)
	SaveMessage(ctx context.Context, msg *store.Message) error
}

// Router executes the inbound-message protocol for established sessions.
type Router struct {
	store      MessageStore
	translator translate.Translator
	registry   *session.Registry
	collector  *metrics.Collector
	logger     *slog.Logger
}

// New creates a Router.
func New(msgStore MessageStore, translator translate.Translator, registry *session.Registry, collector *metrics.Collector) *Router {
	return &Router{
		store:      msgStore,
		translator: translator,
		registry:   registry,
		collector:  collector,
		logger:     slog.Default().With("component", "router"),
	}
}

// HandleFrame processes one inbound frame from an authenticated sender.
//
// An unknown receiver drops the frame silently: no message is created and no
// error reaches the sender. For every frame with a resolvable receiver exactly
// one message is persisted, regardless of delivery outcome; a persistence
// failure is the only error returned, and callers must tear the connection
// down rather than continue past it.
func (r *Router) HandleFrame(ctx context.Context, sender *auth.Principal, frame InboundFrame) error {
	receiver, err := r.store.GetUser(ctx, frame.ReceiverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.collector.MessageDropped()
			r.logger.Debug("dropping frame for unknown receiver",
				"sender_id", sender.ID,
				"receiver_id", frame.ReceiverID,
			)
			return nil
		}
		return fmt.Errorf("resolving receiver: %w", err)
	}

	translated := r.translateForReceiver(ctx, frame.Message, receiver.Language)

	msg := &store.Message{
		SenderID:          sender.ID,
		ReceiverID:        receiver.ID,
		OriginalMessage:   frame.Message,
		TranslatedMessage: translated,
		Timestamp:         time.Now().UTC(),
	}
	if err := r.store.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("persisting message: %w", err)
	}
	r.collector.MessageRelayed()

	delivery, err := json.Marshal(DeliveryFrame{
		ID:                msg.ID,
		SenderID:          msg.SenderID,
		ReceiverID:        msg.ReceiverID,
		OriginalMessage:   msg.OriginalMessage,
		TranslatedMessage: msg.TranslatedMessage,
		Timestamp:         msg.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encoding delivery frame: %w", err)
	}

	// Fire-and-forget: the message is already durable, so an offline
	// receiver just picks it up later from history.
	switch r.registry.SendTo(receiver.ID, delivery) {
	case session.SendDelivered:
		r.collector.Delivery(metrics.DeliveryDelivered)
	case session.SendNoSession:
		r.collector.Delivery(metrics.DeliveryOffline)
		r.logger.Debug("receiver offline, message persisted only",
			"message_id", msg.ID,
			"receiver_id", receiver.ID,
		)
	case session.SendFailed:
		// The registry evicted the dead session; the receiver reads the
		// message from history on reconnect.
		r.collector.Delivery(metrics.DeliveryFailed)
	}

	return nil
}

// translateForReceiver translates text into the receiver's language, failing
// open to the original text on any translator error.
func (r *Router) translateForReceiver(ctx context.Context, text, language string) string {
	start := time.Now()
	translated, err := r.translator.Translate(ctx, text, language)
	r.collector.TranslationObserved(time.Since(start))
	if err != nil {
		r.collector.TranslationFailed()
		r.logger.Warn("translation failed, using original text",
			"target_language", language,
			"error", err,
		)
		return text
	}
	return translated
}
