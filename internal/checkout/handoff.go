package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/example/festisolde/internal/pricing"
	"github.com/shopspring/decimal"
)

const whatsAppBaseURL = "https://wa.me/"

// OrderReference is the short order number quoted to the merchant.
func OrderReference(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

// HandoffMessage is the pre-filled proof-of-payment message.
func HandoffMessage(orderID string, total decimal.Decimal, method PaymentMethod) string {
	return fmt.Sprintf("Bonjour, je viens de passer une commande de %s F par %s. Voici ma preuve de paiement. (Commande #%s)",
		pricing.FormatAmount(total), method, OrderReference(orderID))
}

// HandoffURL builds the WhatsApp deep link to the merchant's number with the
// message pre-filled.
func HandoffURL(merchantNumber, orderID string, total decimal.Decimal, method PaymentMethod) string {
	number := strings.TrimPrefix(strings.ReplaceAll(merchantNumber, " ", ""), "+")
	text := strings.ReplaceAll(url.QueryEscape(HandoffMessage(orderID, total, method)), "+", "%20")
	return whatsAppBaseURL + number + "?text=" + text
}
