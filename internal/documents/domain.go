package documents

import (
	"errors"
)

// Collection names in the document store.
const (
	CollectionOrders         = "orders"
	CollectionInvoices       = "invoices"
	CollectionLegacyInvoices = "legacyInvoices"
	CollectionCustomSales    = "customSales"
	CollectionPurchaseOrders = "purchaseOrders"
	CollectionBills          = "bills"
	CollectionVendors        = "vendors"
)

// Purchase order lifecycle statuses. The transition is one-way.
type POStatus string

const (
	POStatusDraft     POStatus = "DRAFT"
	POStatusConverted POStatus = "CONVERTED"
)

// Bill lifecycle statuses. The transition is one-way.
type BillStatus string

const (
	BillStatusDraft BillStatus = "DRAFT"
	BillStatusPaid  BillStatus = "PAID"
)

// Resolved invoice statuses produced by ResolveInvoiceStatus. Raw payment
// statuses outside this set pass through unchanged.
const (
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusPending = "PENDING"
	InvoiceStatusDue     = "DUE"
)

// Sales order delivery status recognised by the dashboard.
const OrderStatusDelivered = "DELIVERED"

// Payment sub-statuses that resolve to PAID.
const (
	PaymentStatusPaid         = "PAID"
	PaymentStatusCODCollected = "COD_COLLECTED"
)

// LineItem is a single priced row embedded in a purchase order or bill.
type LineItem struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty"`
	Rate float64 `json:"rate"`
}

// Totals is derived money state. It is recomputed from lines, never edited.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// SalesOrder is created by the storefront; this core reads and aggregates it
// and may attach a purchase order link.
type SalesOrder struct {
	ID                  string
	Customer            string
	PricingTotal        float64
	Status              string
	LinkedPurchaseOrder string
	CreatedAt           int64
}

// Invoice unions the current and legacy physical collections. Legacy marks
// which collection the document came from; the two sets are one logical set.
type Invoice struct {
	ID            string
	Total         float64
	Status        string
	PaymentStatus string
	CreatedAt     int64
	Legacy        bool
}

// PurchaseOrder is created by a user action and mutated only to flip its
// status to CONVERTED.
type PurchaseOrder struct {
	ID        string
	VendorID  string
	RefNo     string
	Date      string
	Lines     []LineItem
	TaxPct    float64
	Totals    Totals
	Notes     string
	Status    POStatus
	CreatedAt int64
	UpdatedAt int64
}

// Bill is created directly or by converting a purchase order. OpenAmount
// starts at Totals.Total and is zeroed when the bill is marked paid.
type Bill struct {
	ID         string
	FromPO     string
	VendorID   string
	BillNo     string
	Date       string
	Lines      []LineItem
	TaxPct     float64
	Totals     Totals
	Status     BillStatus
	OpenAmount float64
	CreatedAt  int64
}

// CustomSale is a manually logged off-platform sale.
type CustomSale struct {
	ID             string
	Amount         float64
	Date           int64
	Channel        string
	LinkedPurchase string
	CreatedAt      int64
}

// Vendor is referenced by id from purchase orders and bills, never embedded.
type Vendor struct {
	ID          string
	DisplayName string
}

var (
	// ErrInvalidState occurs when an operation violates the one-way status flow.
	ErrInvalidState = errors.New("documents: invalid state transition")
	// ErrNotFound indicates the referenced document is missing.
	ErrNotFound = errors.New("documents: not found")
)
