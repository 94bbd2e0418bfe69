package usecase

import (
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var clPrinter = message.NewPrinter(language.MustParse("es-CL"))

// formatCLP renders an amount with Chilean grouping, e.g. $10.000,00.
func formatCLP(amount decimal.Decimal) string {
	return clPrinter.Sprintf("$%.2f", amount.InexactFloat64())
}

func certifiedMessage(doc *domain.Document, c *domain.Commission) string {
	return clPrinter.Sprintf("Su documento \"%s\" fue certificado. Código de validación: %s. Monto total: %s.",
		doc.Title, doc.QRValidationCode, formatCLP(c.TotalAmount))
}

func rejectedMessage(doc *domain.Document) string {
	reason := ""
	if doc.RejectionReason != nil {
		reason = *doc.RejectionReason
	}
	return clPrinter.Sprintf("Su documento \"%s\" fue rechazado. Motivo: %s", doc.Title, reason)
}

func commissionPaidMessage(c *domain.Commission, amount decimal.Decimal) string {
	return clPrinter.Sprintf("Se pagó la comisión del documento #%d por %s.", c.DocumentID, formatCLP(amount))
}
