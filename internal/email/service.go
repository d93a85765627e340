package email

import (
	"fmt"
	"strconv"

	"github.com/example/festisolde/internal/checkout"
	"github.com/example/festisolde/internal/domain/order"
	"gopkg.in/gomail.v2"
)

// Service sends mail through an SMTP relay.
type Service struct {
	dialer *gomail.Dialer
	from   string
}

// NewService creates an SMTP sender. An unparseable port falls back to 587.
func NewService(host, port, user, pass, from string) *Service {
	p, err := strconv.Atoi(port)
	if err != nil {
		p = 587
	}
	return &Service{
		dialer: gomail.NewDialer(host, p, user, pass),
		from:   from,
	}
}

// SendOrderNotification tells the merchant a new order awaits payment
// proof.
func (s *Service) SendOrderNotification(to string, e order.Submitted) error {
	subject := fmt.Sprintf("Nouvelle commande #%s - %s", checkout.OrderReference(e.OrderID), e.PaymentMethod)
	return s.send(to, subject, BuildOrderNotificationBody(e))
}

func (s *Service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
