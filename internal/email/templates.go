package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/festisolde/internal/checkout"
	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/pricing"
	"github.com/shopspring/decimal"
)

// BuildOrderNotificationBody builds the HTML body of the merchant's new
// order email. Customer input is escaped.
func BuildOrderNotificationBody(e order.Submitted) string {
	var itemsHTML strings.Builder
	for _, item := range e.Lines {
		name := item.Title
		if name == "" {
			name = item.ProductID
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s F</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s F</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			pricing.FormatAmount(item.UnitPrice),
			pricing.FormatAmount(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #f97316; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Nouvelle commande</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Une commande attend la preuve de paiement du client.</p>

		<div style="background: #fff7ed; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Commande</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">#%s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #f97316; padding-bottom: 10px;">Client</h2>
		<p>%s<br>%s<br>%s</p>
		<p>Paiement : <strong>%s</strong></p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Article</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qté</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Prix</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Sous-total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #f97316; margin-left: 10px;">%s F</span>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Message automatique de FestiSolde.
		</p>
	</div>
</body>
</html>`,
		checkout.OrderReference(e.OrderID),
		html.EscapeString(e.CustomerName),
		html.EscapeString(e.CustomerPhone),
		html.EscapeString(e.CustomerAddress),
		html.EscapeString(e.PaymentMethod),
		itemsHTML.String(),
		pricing.FormatAmount(e.Total),
	)
}
