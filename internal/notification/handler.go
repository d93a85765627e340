package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/logging"
)

var logger = logging.New("notifier")

// Mailer sends the merchant's new order email.
type Mailer interface {
	SendOrderNotification(to string, e order.Submitted) error
}

// Handler processes submitted order events for merchant notifications
type Handler struct {
	mailer        Mailer
	merchantEmail string
}

func NewHandler(mailer Mailer, merchantEmail string) *Handler {
	return &Handler{mailer: mailer, merchantEmail: merchantEmail}
}

// HandleEvent processes an event from Kafka. Events of other types are
// skipped.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var e order.Submitted
	if err := json.Unmarshal(value, &e); err != nil {
		return fmt.Errorf("decode event %s: %w", key, err)
	}
	if e.Type != order.EventOrderSubmitted {
		return nil
	}

	if err := h.mailer.SendOrderNotification(h.merchantEmail, e); err != nil {
		return fmt.Errorf("notify merchant of order %s: %w", e.OrderID, err)
	}

	logger.Info().
		Str("order_id", e.OrderID).
		Str("total", e.Total.String()).
		Int("lines", len(e.Lines)).
		Msg("merchant notified")
	return nil
}
