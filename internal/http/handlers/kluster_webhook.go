package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/NIKHIL-505/swiftchat-bot/internal/bot"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

type dispatcher interface {
	HandleEvent(ctx context.Context, evt *bot.InboundEvent) error
}

// KlusterWebhookHandler is the inbound webhook entry point. It is the last
// line of defense for handler faults: by the time an error reaches it, the
// dispatcher has already released the processing lock.
type KlusterWebhookHandler struct {
	dispatcher dispatcher
	logger     *logging.Logger
}

func NewKlusterWebhookHandler(d dispatcher, logger *logging.Logger) *KlusterWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &KlusterWebhookHandler{dispatcher: d, logger: logger}
}

// HandleMessage processes one SwiftChat webhook delivery.
func (h *KlusterWebhookHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var evt bot.InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if evt.From == "" {
		http.Error(w, "missing from field", http.StatusBadRequest)
		return
	}
	h.logger.Info("swiftchat message received", "user_mobile", evt.From, "message_type", evt.Type)

	if err := h.dispatcher.HandleEvent(r.Context(), &evt); err != nil {
		h.logger.Error("swiftchat webhook error", "user_mobile", evt.From, "error", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleTest logs and acknowledges test webhook deliveries.
func (h *KlusterWebhookHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		h.logger.Info("test webhook request received", "request_body", body)
	} else {
		h.logger.Info("test webhook request received")
	}
	w.WriteHeader(http.StatusOK)
}
