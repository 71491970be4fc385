package documents

import "strings"

// ResolveInvoiceStatus normalises an invoice's status. An explicit status
// field wins verbatim; otherwise the payment sub-status decides:
// empty resolves to DUE, PAID and COD_COLLECTED resolve to PAID, anything
// containing "PENDING" resolves to PENDING, and any other raw payment status
// passes through unchanged. Total function: malformed input degrades to DUE.
func ResolveInvoiceStatus(inv Invoice) string {
	if inv.Status != "" {
		return inv.Status
	}
	payment := inv.PaymentStatus
	switch {
	case payment == "":
		return InvoiceStatusDue
	case payment == PaymentStatusPaid, payment == PaymentStatusCODCollected:
		return InvoiceStatusPaid
	case strings.Contains(payment, "PENDING"):
		return InvoiceStatusPending
	default:
		return payment
	}
}
