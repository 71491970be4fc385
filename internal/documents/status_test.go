package documents

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveInvoiceStatusExplicitOverrideWins(t *testing.T) {
	inv := Invoice{Status: "X", PaymentStatus: PaymentStatusPaid}
	require.Equal(t, "X", ResolveInvoiceStatus(inv))
}

func TestResolveInvoiceStatusFromPayment(t *testing.T) {
	cases := []struct {
		name    string
		payment string
		want    string
	}{
		{"empty payment is due", "", InvoiceStatusDue},
		{"paid", "PAID", InvoiceStatusPaid},
		{"cod collected", "COD_COLLECTED", InvoiceStatusPaid},
		{"payment pending", "PAYMENT_PENDING", InvoiceStatusPending},
		{"cod pending", "COD_PENDING", InvoiceStatusPending},
		{"unknown passes through", "REFUND_REQUESTED", "REFUND_REQUESTED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveInvoiceStatus(Invoice{PaymentStatus: tc.payment})
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveInvoiceStatusEmptyInvoice(t *testing.T) {
	require.Equal(t, InvoiceStatusDue, ResolveInvoiceStatus(Invoice{}))
}

func TestResolveInvoiceStatusMalformedPaymentDegradesToDue(t *testing.T) {
	// Decoding a payment object without a status string yields an empty
	// payment status, which must resolve to DUE rather than failing.
	inv := DecodeInvoice("inv-1", map[string]any{"payment": map[string]any{"status": 42}}, false)
	require.Equal(t, InvoiceStatusDue, ResolveInvoiceStatus(inv))
}
