package documents

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSalesOrder(t *testing.T) {
	fields := map[string]any{
		"customer":            "Acme",
		"pricing":             map[string]any{"total": float64(2500)},
		"status":              "DELIVERED",
		"linkedPurchaseOrder": map[string]any{"id": "po-7"},
		"createdAt":           float64(1700000000000),
	}
	order := DecodeSalesOrder("ord-1", fields)
	require.Equal(t, "ord-1", order.ID)
	require.Equal(t, "Acme", order.Customer)
	require.Equal(t, 2500.0, order.PricingTotal)
	require.Equal(t, "DELIVERED", order.Status)
	require.Equal(t, "po-7", order.LinkedPurchaseOrder)
	require.Equal(t, int64(1700000000000), order.CreatedAt)
}

func TestDecodeSalesOrderMissingFields(t *testing.T) {
	order := DecodeSalesOrder("ord-2", map[string]any{})
	require.Equal(t, 0.0, order.PricingTotal)
	require.Empty(t, order.LinkedPurchaseOrder)
	require.Zero(t, order.CreatedAt)
}

func TestDecodeSalesOrderLinkAsString(t *testing.T) {
	order := DecodeSalesOrder("ord-3", map[string]any{"linkedPurchaseOrder": "po-9"})
	require.Equal(t, "po-9", order.LinkedPurchaseOrder)
}

func TestDecodeInvoiceVariants(t *testing.T) {
	current := DecodeInvoice("inv-1", map[string]any{
		"total":   float64(500),
		"payment": map[string]any{"status": "DUE"},
	}, false)
	require.Equal(t, 500.0, current.Total)
	require.Equal(t, "DUE", current.PaymentStatus)
	require.False(t, current.Legacy)

	legacy := DecodeInvoice("inv-2", map[string]any{
		"pricing": map[string]any{"total": float64(300)},
		"status":  "PAID",
	}, true)
	require.Equal(t, 300.0, legacy.Total)
	require.Equal(t, "PAID", legacy.Status)
	require.True(t, legacy.Legacy)
}

func TestDecodeInvoiceNestedPaymentStatusResolvesPaid(t *testing.T) {
	// Payment status lives under payment.status; a top-level key is not read.
	inv := DecodeInvoice("inv-paid", map[string]any{
		"total":   float64(1499),
		"payment": map[string]any{"status": PaymentStatusPaid},
	}, false)
	require.Equal(t, PaymentStatusPaid, inv.PaymentStatus)
	require.Equal(t, InvoiceStatusPaid, ResolveInvoiceStatus(inv))

	flat := DecodeInvoice("inv-flat", map[string]any{
		"total":         float64(1499),
		"paymentStatus": PaymentStatusPaid,
	}, false)
	require.Empty(t, flat.PaymentStatus)
	require.Equal(t, InvoiceStatusDue, ResolveInvoiceStatus(flat))
}

func TestDecodeInvoiceNonNumericTotal(t *testing.T) {
	inv := DecodeInvoice("inv-3", map[string]any{"total": "abc"}, false)
	require.Equal(t, 0.0, inv.Total)
}

func TestDecodePurchaseOrder(t *testing.T) {
	fields := map[string]any{
		"vendorId": "ven-1",
		"refNo":    "PO-100",
		"date":     "2024-05-01",
		"lines": []any{
			map[string]any{"name": "Crate", "qty": float64(2), "rate": float64(100)},
			"garbage entry",
		},
		"taxPct":    float64(18),
		"totals":    map[string]any{"subtotal": float64(200), "tax": float64(36), "total": float64(236)},
		"notes":     "rush",
		"status":    "DRAFT",
		"createdAt": float64(1700000000000),
	}
	po := DecodePurchaseOrder("po-1", fields)
	require.Equal(t, "ven-1", po.VendorID)
	require.Len(t, po.Lines, 1)
	require.Equal(t, LineItem{Name: "Crate", Qty: 2, Rate: 100}, po.Lines[0])
	require.Equal(t, POStatusDraft, po.Status)
	require.Equal(t, Totals{Subtotal: 200, Tax: 36, Total: 236}, po.Totals)
}

func TestDecodeBill(t *testing.T) {
	fields := map[string]any{
		"fromPO":     "po-1",
		"vendorId":   "ven-1",
		"billNo":     "",
		"status":     "DRAFT",
		"openAmount": float64(236),
		"totals":     map[string]any{"subtotal": float64(200), "tax": float64(36), "total": float64(236)},
	}
	bill := DecodeBill("bill-1", fields)
	require.Equal(t, "po-1", bill.FromPO)
	require.Equal(t, BillStatusDraft, bill.Status)
	require.Equal(t, 236.0, bill.OpenAmount)
}

func TestDecodeCustomSaleFallbacks(t *testing.T) {
	sale := DecodeCustomSale("cs-1", map[string]any{
		"total":     float64(150),
		"createdAt": float64(1700000000000),
	})
	require.Equal(t, 150.0, sale.Amount)
	require.Equal(t, int64(1700000000000), sale.Date)

	explicit := DecodeCustomSale("cs-2", map[string]any{
		"amount":    float64(90),
		"date":      "2024-01-15",
		"createdAt": float64(1700000000000),
	})
	require.Equal(t, 90.0, explicit.Amount)
	require.NotEqual(t, int64(1700000000000), explicit.Date)
	require.NotZero(t, explicit.Date)
}

func TestDecodeCustomSaleLinkedPurchase(t *testing.T) {
	sale := DecodeCustomSale("cs-3", map[string]any{
		"amount":           float64(1260),
		"linkedPurchaseId": "po-4",
	})
	require.Equal(t, "po-4", sale.LinkedPurchase)
}

func TestEncodeRoundTrip(t *testing.T) {
	lines := []LineItem{{Name: "a", Qty: 1, Rate: 2}}
	decoded := decodeLines(EncodeLines(lines))
	require.Equal(t, lines, decoded)

	totals := Totals{Subtotal: 10, Tax: 1, Total: 11}
	require.Equal(t, totals, decodeTotals(EncodeTotals(totals)))
}
