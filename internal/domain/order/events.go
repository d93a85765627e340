package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderSubmitted = "OrderSubmitted"

type SubmittedLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Submitted is published once an order header and all its lines are stored.
type Submitted struct {
	Type            string          `json:"type"`
	OrderID         string          `json:"order_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	PaymentMethod   string          `json:"payment_method"`
	Total           decimal.Decimal `json:"total"`
	Lines           []SubmittedLine `json:"lines"`
	SubmittedAt     time.Time       `json:"submitted_at"`
}

func (Submitted) EventType() string { return EventOrderSubmitted }
