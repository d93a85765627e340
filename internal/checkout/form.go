package checkout

import (
	"errors"
	"strings"
)

// PaymentMethod is a mobile money operator accepted for manual payment.
type PaymentMethod string

const (
	OrangeMoney PaymentMethod = "Orange Money"
	MoovMoney   PaymentMethod = "Moov Money"
)

// DefaultPaymentMethod is preselected on the form.
const DefaultPaymentMethod = OrangeMoney

var (
	ErrMissingName          = errors.New("customer name is required")
	ErrMissingPhone         = errors.New("customer phone is required")
	ErrMissingAddress       = errors.New("delivery address is required")
	ErrInvalidPaymentMethod = errors.New("payment method must be Orange Money or Moov Money")
)

func (m PaymentMethod) Valid() bool {
	return m == OrangeMoney || m == MoovMoney
}

// Form is the delivery and payment input of a checkout.
type Form struct {
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerAddress string        `json:"customer_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
}

// Normalize trims the fields and applies the default payment method.
func (f Form) Normalize() Form {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.CustomerPhone = strings.TrimSpace(f.CustomerPhone)
	f.CustomerAddress = strings.TrimSpace(f.CustomerAddress)
	f.PaymentMethod = PaymentMethod(strings.TrimSpace(string(f.PaymentMethod)))
	if f.PaymentMethod == "" {
		f.PaymentMethod = DefaultPaymentMethod
	}
	return f
}

// Validate reports every invalid field at once.
func (f Form) Validate() error {
	var errs []error
	if f.CustomerName == "" {
		errs = append(errs, ErrMissingName)
	}
	if f.CustomerPhone == "" {
		errs = append(errs, ErrMissingPhone)
	}
	if f.CustomerAddress == "" {
		errs = append(errs, ErrMissingAddress)
	}
	if !f.PaymentMethod.Valid() {
		errs = append(errs, ErrInvalidPaymentMethod)
	}
	return errors.Join(errs...)
}
