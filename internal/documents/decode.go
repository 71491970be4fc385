package documents

import (
	"encoding/json"
	"strconv"
)

// Decoders turn raw store documents into typed records. The store is
// schemaless, so every accessor is lenient: missing or malformed fields
// coerce to their zero value rather than failing the decode.

// numberValue coerces any JSON-ish scalar to float64, defaulting to 0.
func numberValue(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}

func nestedMap(fields map[string]any, key string) map[string]any {
	m, _ := fields[key].(map[string]any)
	return m
}

// refID extracts a document reference stored either as a plain id string or
// as an object carrying an "id" field.
func refID(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		return stringValue(v["id"])
	default:
		return ""
	}
}

func decodeLines(value any) []LineItem {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	lines := make([]LineItem, 0, len(raw))
	for _, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, LineItem{
			Name: stringValue(item["name"]),
			Qty:  numberValue(item["qty"]),
			Rate: numberValue(item["rate"]),
		})
	}
	return lines
}

func decodeTotals(value any) Totals {
	m, ok := value.(map[string]any)
	if !ok {
		return Totals{}
	}
	return Totals{
		Subtotal: numberValue(m["subtotal"]),
		Tax:      numberValue(m["tax"]),
		Total:    numberValue(m["total"]),
	}
}

// DecodeSalesOrder maps a raw orders document.
func DecodeSalesOrder(id string, fields map[string]any) SalesOrder {
	return SalesOrder{
		ID:                  id,
		Customer:            stringValue(fields["customer"]),
		PricingTotal:        numberValue(nestedMap(fields, "pricing")["total"]),
		Status:              stringValue(fields["status"]),
		LinkedPurchaseOrder: refID(fields["linkedPurchaseOrder"]),
		CreatedAt:           ToMillis(fields["createdAt"]),
	}
}

// DecodeInvoice maps a raw invoice document from either physical collection.
// Legacy documents keep their total under pricing.total.
func DecodeInvoice(id string, fields map[string]any, legacy bool) Invoice {
	total := numberValue(fields["total"])
	if _, ok := fields["total"]; !ok {
		total = numberValue(nestedMap(fields, "pricing")["total"])
	}
	return Invoice{
		ID:            id,
		Total:         total,
		Status:        stringValue(fields["status"]),
		PaymentStatus: stringValue(nestedMap(fields, "payment")["status"]),
		CreatedAt:     ToMillis(fields["createdAt"]),
		Legacy:        legacy,
	}
}

// DecodePurchaseOrder maps a raw purchaseOrders document.
func DecodePurchaseOrder(id string, fields map[string]any) PurchaseOrder {
	return PurchaseOrder{
		ID:        id,
		VendorID:  stringValue(fields["vendorId"]),
		RefNo:     stringValue(fields["refNo"]),
		Date:      stringValue(fields["date"]),
		Lines:     decodeLines(fields["lines"]),
		TaxPct:    numberValue(fields["taxPct"]),
		Totals:    decodeTotals(fields["totals"]),
		Notes:     stringValue(fields["notes"]),
		Status:    POStatus(stringValue(fields["status"])),
		CreatedAt: ToMillis(fields["createdAt"]),
		UpdatedAt: ToMillis(fields["updatedAt"]),
	}
}

// DecodeBill maps a raw bills document.
func DecodeBill(id string, fields map[string]any) Bill {
	return Bill{
		ID:         id,
		FromPO:     refID(fields["fromPO"]),
		VendorID:   stringValue(fields["vendorId"]),
		BillNo:     stringValue(fields["billNo"]),
		Date:       stringValue(fields["date"]),
		Lines:      decodeLines(fields["lines"]),
		TaxPct:     numberValue(fields["taxPct"]),
		Totals:     decodeTotals(fields["totals"]),
		Status:     BillStatus(stringValue(fields["status"])),
		OpenAmount: numberValue(fields["openAmount"]),
		CreatedAt:  ToMillis(fields["createdAt"]),
	}
}

// DecodeCustomSale maps a raw customSales document. The sale moment is the
// date field falling back to createdAt; the amount falls back to total.
func DecodeCustomSale(id string, fields map[string]any) CustomSale {
	amount := numberValue(fields["amount"])
	if _, ok := fields["amount"]; !ok {
		amount = numberValue(fields["total"])
	}
	date := ToMillis(fields["date"])
	if date == 0 {
		date = ToMillis(fields["createdAt"])
	}
	return CustomSale{
		ID:             id,
		Amount:         amount,
		Date:           date,
		Channel:        stringValue(fields["channel"]),
		LinkedPurchase: stringValue(fields["linkedPurchaseId"]),
		CreatedAt:      ToMillis(fields["createdAt"]),
	}
}

// DecodeVendor maps a raw vendors document.
func DecodeVendor(id string, fields map[string]any) Vendor {
	return Vendor{ID: id, DisplayName: stringValue(fields["displayName"])}
}

// EncodeLines renders line items back to the store representation.
func EncodeLines(lines []LineItem) []any {
	out := make([]any, 0, len(lines))
	for _, line := range lines {
		out = append(out, map[string]any{
			"name": line.Name,
			"qty":  line.Qty,
			"rate": line.Rate,
		})
	}
	return out
}

// EncodeTotals renders totals back to the store representation.
func EncodeTotals(t Totals) map[string]any {
	return map[string]any{
		"subtotal": t.Subtotal,
		"tax":      t.Tax,
		"total":    t.Total,
	}
}
